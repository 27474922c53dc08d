// Package store implements the crawler's Store capability: classifying a
// fetched body, writing it to a sanitized path under a root directory, and
// appending a row to the metadata ledger.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"falcon-crawler/internal/urlutil"
)

const ledgerHeader = "url\tpath\tcontent_type\n"

// Store persists a fetched artifact and records it in the metadata ledger.
type Store interface {
	// Persist classifies body by contentType, writes it under root, and
	// appends a row to the metadata ledger. It returns the artifact's path
	// (relative to root, forward-slash separated) and whether it was
	// classified as HTML.
	Persist(rawURL string, body []byte, contentType string) (path string, isHTML bool, err error)
}

// FileStore writes artifacts to the local filesystem under root, split into
// html/ and files/ subtrees, and appends to a single TSV ledger file.
type FileStore struct {
	root string

	mu           sync.Mutex
	ledger       *os.File
	ledgerClosed bool
}

// New constructs a FileStore rooted at root, creating root/html, root/files,
// and the metadata ledger (with its header, if the ledger file is new).
func New(root string) (*FileStore, error) {
	root = strings.TrimRight(root, "/")
	if root == "" {
		return nil, fmt.Errorf("store: root directory must be provided")
	}
	for _, sub := range []string{"html", "files"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("store: create %s directory: %w", sub, err)
		}
	}

	ledgerPath := filepath.Join(root, "metadata.tsv")
	_, statErr := os.Stat(ledgerPath)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(ledgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open ledger: %w", err)
	}
	if needsHeader {
		if _, err := f.WriteString(ledgerHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("store: write ledger header: %w", err)
		}
	}

	return &FileStore{root: root, ledger: f}, nil
}

// Close closes the ledger file handle.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledgerClosed {
		return nil
	}
	s.ledgerClosed = true
	return s.ledger.Close()
}

// Persist implements Store.
func (s *FileStore) Persist(rawURL string, body []byte, contentType string) (string, bool, error) {
	lowerCT := strings.ToLower(strings.TrimSpace(contentType))
	isHTML := strings.Contains(lowerCT, "text/html") || strings.TrimSpace(contentType) == ""

	parts, ok := urlutil.Parse(rawURL)
	if !ok {
		return "", false, fmt.Errorf("store: invalid url %q", rawURL)
	}

	var (
		dir      string
		filename string
	)
	if isHTML {
		dir = "html"
		filename = urlutil.SanitizeFilename(parts, ".html", "html")
	} else {
		dir = "files"
		ext := urlutil.ExtensionOf(rawURL)
		if ext == "" {
			ext = ".bin"
		}
		filename = urlutil.SanitizeFilename(parts, ext, "file")
	}

	fullDir := filepath.Join(s.root, dir)
	fullPath := filepath.Join(fullDir, filename)
	if err := writeAtomic(fullDir, fullPath, body); err != nil {
		return "", false, fmt.Errorf("store: write artifact: %w", err)
	}

	relPath := dir + "/" + filename
	if err := s.appendLedger(rawURL, relPath, contentType); err != nil {
		return "", false, fmt.Errorf("store: append ledger: %w", err)
	}

	return relPath, isHTML, nil
}

func writeAtomic(dir, path string, body []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *FileStore) appendLedger(rawURL, relPath, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledgerClosed {
		return fmt.Errorf("ledger is closed")
	}
	line := rawURL + "\t" + relPath + "\t" + strings.TrimSpace(contentType) + "\n"
	_, err := s.ledger.WriteString(line)
	return err
}
