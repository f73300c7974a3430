package repositories

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored blob
type BlobInfo struct {
	Name         string
	ContentType  string
	Size         int64
	LastModified time.Time
}

// BlobRepository abstracts the document blob store. SignedURL and
// SignedBaseURL produce time-limited access URLs in the style of storage-
// account SAS links; SignedBaseURL covers the whole container when no
// specific document applies.
type BlobRepository interface {
	Upload(ctx context.Context, name, contentType string, content io.Reader) error
	List(ctx context.Context) ([]BlobInfo, error)
	Open(ctx context.Context, name string) (io.ReadCloser, *BlobInfo, error)
	SignedURL(name string, ttl time.Duration) (string, error)
	SignedBaseURL() string
	Verify(name, expiryParam, sigParam string) error
}

// BlobRepositoryError represents errors from the blob repository
type BlobRepositoryError struct {
	Operation string
	Name      string
	Err       error
}

func (e *BlobRepositoryError) Error() string {
	msg := e.Operation
	if e.Name != "" {
		msg += " " + e.Name
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BlobRepositoryError) Unwrap() error {
	return e.Err
}

// NewBlobRepositoryError creates a new blob repository error
func NewBlobRepositoryError(operation, name string, err error) *BlobRepositoryError {
	return &BlobRepositoryError{
		Operation: operation,
		Name:      name,
		Err:       err,
	}
}
