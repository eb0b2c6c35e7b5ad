package version

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/repository/record"
)

// Store is a dotted-path accessor over the cached record.
// The record is loaded once; Update persists and replaces it.
type Store struct {
	// repo is the backing storage.
	repo record.Repository
	// record is the cached copy shared by readers.
	record *domain.Record
	// mu protects record.
	mu sync.RWMutex
}

// NewStore loads the record from repo.
func NewStore(ctx context.Context, repo record.Repository) (*Store, error) {
	loaded, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	return &Store{
		repo:   repo,
		record: loaded,
	}, nil
}

// Get returns the value at path, or def when the path is missing.
func (s *Store) Get(path string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := s.record.Get(path); ok {
		return value
	}

	return def
}

// Has reports whether path exists in the record.
func (s *Store) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.record.Has(path)
}

// Scalar returns the text of the scalar at path.
func (s *Store) Scalar(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.record.Scalar(path)
}

// Root returns a copy of the whole record, safe to mutate.
func (s *Store) Root() *domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.record.Clone()
}

// Update persists the whole record and makes it the cached copy.
// The cache is untouched when persisting fails.
func (s *Store) Update(ctx context.Context, updated *domain.Record) error {
	if err := s.repo.Save(ctx, updated); err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	s.mu.Lock()
	s.record = updated.Clone()
	s.mu.Unlock()

	return nil
}

// Mode returns the mode configured for field.
func (s *Store) Mode(field domain.Field) domain.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.ModeOf(s.record, field)
}
