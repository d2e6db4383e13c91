package handler

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"stock-empire/internal/middleware"
	"stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

// respondJSON writes data as a JSON body
func respondJSON(w http.ResponseWriter, status int, data interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// respondCached writes data with an ETag and answers 304 when the client
// already holds the same body.
func respondCached(w http.ResponseWriter, r *http.Request, data interface{}, maxAge int, log *logger.Logger) {
	etag := generateETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	respondJSON(w, http.StatusOK, data, log)
}

// sendErrorResponse writes err as the standard error body. Errors that are
// not application errors become a generic internal failure.
func sendErrorResponse(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	appErr := errors.As(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}

	if writeErr := errors.Write(w, appErr, middleware.GetRequestID(r.Context())); writeErr != nil {
		log.WithError(writeErr).Error("Failed to encode error response")
	}
}

func generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}

// langParam returns "en" or "ko", the default
func langParam(r *http.Request) string {
	if strings.EqualFold(r.URL.Query().Get("lang"), "en") {
		return "en"
	}
	return "ko"
}

// clientIP returns the peer address of the request. Forwarded headers are
// only honored through chi's RealIP, which the router installs when
// TRUST_PROXY_HEADERS is set.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
