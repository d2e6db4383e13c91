package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stock-empire/internal/domain"
)

// ErrFeedNotFound is returned when no candidate directory holds the file
var ErrFeedNotFound = errors.New("feed file not found")

// FeedRepository reads flat JSON feeds written by the crawlers. Files are
// looked up in an ordered list of directories and the first hit wins.
type FeedRepository struct {
	dirs []string
}

// NewFeedRepository creates a repository searching dirs in order
func NewFeedRepository(dirs []string) *FeedRepository {
	return &FeedRepository{dirs: dirs}
}

// Locate returns the path of the first existing candidate for name.
// Absolute names are checked as given.
func (r *FeedRepository) Locate(name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = candidates[:0]
		for _, dir := range r.dirs {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFeedNotFound, name)
}

// ReadAnalyzed loads the analyzed breaking news document
func (r *FeedRepository) ReadAnalyzed(name string) (*domain.AnalyzedNewsFile, error) {
	var doc domain.AnalyzedNewsFile
	if err := r.readJSON(name, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadNews loads a news item array
func (r *FeedRepository) ReadNews(name string) ([]domain.NewsItem, error) {
	var items []domain.NewsItem
	if err := r.readJSON(name, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *FeedRepository) readJSON(name string, v interface{}) error {
	path, err := r.Locate(name)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
