package version

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/repository/record"
)

var errSaveFailed = errors.New("disk is full")

// memoryRepository keeps the record in memory and counts saves.
type memoryRepository struct {
	record  *domain.Record
	saveErr error
	saves   int
	mu      sync.Mutex
}

func newMemoryRepository(t *testing.T, document string) *memoryRepository {
	t.Helper()

	parsed, err := domain.ParseRecord([]byte(document))
	require.NoError(t, err)

	return &memoryRepository{record: parsed}
}

func newDefaultRepository(t *testing.T) *memoryRepository {
	t.Helper()

	return newMemoryRepository(t, string(record.DefaultStub))
}

func (m *memoryRepository) Load(context.Context) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.record.Clone(), nil
}

func (m *memoryRepository) Save(_ context.Context, updated *domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	m.record = updated.Clone()
	m.saves++

	return nil
}

func (m *memoryRepository) document(t *testing.T) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	contents, err := m.record.Marshal()
	require.NoError(t, err)

	return string(contents)
}

func (m *memoryRepository) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saves
}

// fakeSource returns canned git output.
type fakeSource struct {
	version      string
	versionErr   error
	commit       string
	commitErr    error
	timestamp    string
	timestampErr error
	calls        []string
}

func (f *fakeSource) Version(context.Context) (string, error) {
	f.calls = append(f.calls, "version")

	return f.version, f.versionErr
}

func (f *fakeSource) Commit(context.Context) (string, error) {
	f.calls = append(f.calls, "commit")

	return f.commit, f.commitErr
}

func (f *fakeSource) Timestamp(context.Context) (string, error) {
	f.calls = append(f.calls, "timestamp")

	return f.timestamp, f.timestampErr
}

func newStore(t *testing.T, repo record.Repository) *Store {
	t.Helper()

	store, err := NewStore(context.Background(), repo)
	require.NoError(t, err)

	return store
}
