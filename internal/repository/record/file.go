package record

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	domain "github.com/oshokin/app-version/internal/domain/version"
)

// DefaultFilePermissions is used when the record file is written.
const DefaultFilePermissions = 0o600

// DefaultStub is the record used when the backing file is missing.
//
//go:embed default.yaml
var DefaultStub []byte

// Repository defines persistence operations for the version record.
type Repository interface {
	Load(ctx context.Context) (*domain.Record, error)
	Save(ctx context.Context, record *domain.Record) error
}

// FileRepository persists the record to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the record file.
	path string
	// stub is parsed instead of the file while the file does not exist.
	stub []byte
	// mu serializes file access within the process.
	mu sync.Mutex
}

// Option configures a FileRepository.
type Option func(*FileRepository)

// WithStub replaces the embedded default document.
func WithStub(stub []byte) Option {
	return func(r *FileRepository) {
		if stub != nil {
			r.stub = stub
		}
	}
}

var errRecordRequired = errors.New("record must be provided")

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string, opts ...Option) *FileRepository {
	repo := &FileRepository{
		path: filepath.Clean(path),
		stub: DefaultStub,
	}

	for _, opt := range opts {
		opt(repo)
	}

	return repo
}

// Path returns the record file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the record from disk, or from the stub if the file is missing.
func (r *FileRepository) Load(_ context.Context) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		contents = r.stub
	} else if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}

	record, err := domain.ParseRecord(contents)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}

	return record, nil
}

// Save writes the whole record to disk.
// The file is replaced atomically so a crash never leaves half a record behind.
func (r *FileRepository) Save(_ context.Context, record *domain.Record) error {
	if record == nil {
		return errRecordRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := record.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	temporary, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary record file: %w", err)
	}

	temporaryName := temporary.Name()

	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(temporaryName)
	}()

	if _, err = temporary.Write(data); err != nil {
		_ = temporary.Close()
		return fmt.Errorf("write record file: %w", err)
	}

	if err = temporary.Close(); err != nil {
		return fmt.Errorf("close record file: %w", err)
	}

	if err = os.Chmod(temporaryName, DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod record file: %w", err)
	}

	if err = os.Rename(temporaryName, r.path); err != nil {
		return fmt.Errorf("replace record file: %w", err)
	}

	return nil
}
