package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/out"
)

// jsonFile reads and atomically rewrites one JSON document.
type jsonFile struct {
	mu   sync.Mutex
	path string
	perm fs.FileMode
}

// load returns false when the file does not exist.
func (f *jsonFile) load(v any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return true, nil
}

func (f *jsonFile) save(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.path, err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, f.perm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *jsonFile) clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", f.path, err)
	}
	return nil
}

// =============================================================================
// Token file
// =============================================================================

// TokenFileStore keeps the mailbox OAuth token in a 0600 JSON file.
type TokenFileStore struct {
	file jsonFile
}

func NewTokenFileStore(path string) *TokenFileStore {
	return &TokenFileStore{file: jsonFile{path: path, perm: 0o600}}
}

func (s *TokenFileStore) Load(context.Context) (*oauth2.Token, error) {
	var token oauth2.Token
	ok, err := s.file.load(&token)
	if err != nil || !ok {
		return nil, err
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, nil
	}
	return &token, nil
}

func (s *TokenFileStore) Save(_ context.Context, token *oauth2.Token) error {
	if token == nil {
		return s.file.clear()
	}
	return s.file.save(token)
}

func (s *TokenFileStore) Clear(context.Context) error {
	return s.file.clear()
}

// =============================================================================
// Suggestion cache file
// =============================================================================

// SuggestionFileStore mirrors the suggestion list to a JSON file.
type SuggestionFileStore struct {
	file jsonFile
}

func NewSuggestionFileStore(path string) *SuggestionFileStore {
	return &SuggestionFileStore{file: jsonFile{path: path, perm: 0o644}}
}

func (s *SuggestionFileStore) Load(context.Context) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	ok, err := s.file.load(&entry)
	if err != nil || !ok {
		return nil, err
	}
	return &entry, nil
}

func (s *SuggestionFileStore) Save(_ context.Context, entry *domain.CacheEntry) error {
	return s.file.save(entry)
}

func (s *SuggestionFileStore) Clear(context.Context) error {
	return s.file.clear()
}

var (
	_ out.CredentialStore      = (*TokenFileStore)(nil)
	_ out.SuggestionCacheStore = (*SuggestionFileStore)(nil)
)
