package domain

// AuthClaims are the verified claims of an identity provider session
type AuthClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Tier  Tier   `json:"tier"`
	Exp   int64  `json:"exp"`
}

// DailyLimitState is the stored view-limit counter of one viewer
type DailyLimitState struct {
	Count         int    `json:"count"`
	LastResetDate string `json:"last_reset_date"`
}

// ViewLimitStatus is returned by the view-limit endpoints
type ViewLimitStatus struct {
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
	Limited bool `json:"limited"`
}
