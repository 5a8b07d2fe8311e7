package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/amosWeiskopf/headsmith/internal/models"
)

// Store writes per-host artifacts under a results and a favicons directory.
// File names depend only on the seed's host, so seeds sharing a host
// overwrite each other.
type Store struct {
	resultsDir  string
	faviconsDir string
}

// New creates a Store. Directories are created lazily on first write.
func New(resultsDir, faviconsDir string) *Store {
	return &Store{
		resultsDir:  resultsDir,
		faviconsDir: faviconsDir,
	}
}

// Host returns the host (with port, if any) used to name a seed's files
func Host(seed string) (string, error) {
	u, err := url.Parse(seed)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", seed, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", seed)
	}
	return u.Host, nil
}

func (s *Store) HeadlinesPath(seed string) (string, error) {
	host, err := Host(seed)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.resultsDir, host+".txt"), nil
}

func (s *Store) SubpagesPath(seed string) (string, error) {
	host, err := Host(seed)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.resultsDir, "subpages_"+host+".txt"), nil
}

func (s *Store) FaviconPath(seed string) (string, error) {
	host, err := Host(seed)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.faviconsDir, host+".ico"), nil
}

// SaveHeadlines writes headlines one per line and returns the file path
func (s *Store) SaveHeadlines(seed string, headlines []string) (string, error) {
	path, err := s.HeadlinesPath(seed)
	if err != nil {
		return "", err
	}
	return path, writeFile(path, []byte(strings.Join(headlines, "\n")))
}

// SaveSubpages writes one "url<TAB>title" line per record and returns the
// file path
func (s *Store) SaveSubpages(seed string, pages []models.Subpage) (string, error) {
	path, err := s.SubpagesPath(seed)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(pages))
	for _, p := range pages {
		lines = append(lines, p.URL+"\t"+p.Title)
	}
	return path, writeFile(path, []byte(strings.Join(lines, "\n")))
}

// SaveFavicon writes data verbatim and returns the file path
func (s *Store) SaveFavicon(seed string, data []byte) (string, error) {
	path, err := s.FaviconPath(seed)
	if err != nil {
		return "", err
	}
	return path, writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s failed: %w", path, err)
	}
	return nil
}
