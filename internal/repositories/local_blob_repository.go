package repositories

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const containerURLTTL = 24 * time.Hour

var (
	ErrInvalidBlobName  = errors.New("invalid blob name")
	ErrBlobNotFound     = errors.New("blob not found")
	ErrSignatureInvalid = errors.New("signature invalid or expired")
)

// LocalBlobRepository stores blobs on the local filesystem and issues
// HMAC-signed, time-limited access URLs (SAS-style `se`/`sig` query
// parameters, validated by the content endpoint).
type LocalBlobRepository struct {
	root       string
	baseURL    string // e.g. http://localhost:8080/api/v1/content
	signingKey []byte
}

// NewLocalBlobRepository creates a blob repository rooted at dir. The signing
// key must be non-empty; URLs are issued under baseURL.
func NewLocalBlobRepository(dir, baseURL string, signingKey []byte) (*LocalBlobRepository, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("blob signing key is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewBlobRepositoryError("init", dir, err)
	}
	return &LocalBlobRepository{
		root:       dir,
		baseURL:    strings.TrimRight(baseURL, "/"),
		signingKey: signingKey,
	}, nil
}

// blobPath resolves a blob name to a path under root, rejecting anything that
// would escape it.
func (r *LocalBlobRepository) blobPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidBlobName
	}
	return filepath.Join(r.root, name), nil
}

// Upload stores a blob under its name, replacing any previous content
func (r *LocalBlobRepository) Upload(ctx context.Context, name, contentType string, content io.Reader) error {
	path, err := r.blobPath(name)
	if err != nil {
		return NewBlobRepositoryError("upload", name, err)
	}

	tmp, err := os.CreateTemp(r.root, ".upload-*")
	if err != nil {
		return NewBlobRepositoryError("upload", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return NewBlobRepositoryError("upload", name, err)
	}
	if err := tmp.Close(); err != nil {
		return NewBlobRepositoryError("upload", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return NewBlobRepositoryError("upload", name, err)
	}
	return nil
}

// List returns info for every stored blob, sorted by name
func (r *LocalBlobRepository) List(ctx context.Context) ([]BlobInfo, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, NewBlobRepositoryError("list", "", err)
	}

	infos := make([]BlobInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, BlobInfo{
			Name:         entry.Name(),
			ContentType:  contentTypeFor(entry.Name()),
			Size:         fi.Size(),
			LastModified: fi.ModTime(),
		})
	}
	return infos, nil
}

// Open returns the blob content and its info
func (r *LocalBlobRepository) Open(ctx context.Context, name string) (io.ReadCloser, *BlobInfo, error) {
	path, err := r.blobPath(name)
	if err != nil {
		return nil, nil, NewBlobRepositoryError("open", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, NewBlobRepositoryError("open", name, ErrBlobNotFound)
		}
		return nil, nil, NewBlobRepositoryError("open", name, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, NewBlobRepositoryError("open", name, err)
	}

	return f, &BlobInfo{
		Name:         name,
		ContentType:  contentTypeFor(name),
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
	}, nil
}

// SignedURL returns a time-limited URL for one blob
func (r *LocalBlobRepository) SignedURL(name string, ttl time.Duration) (string, error) {
	if _, err := r.blobPath(name); err != nil {
		return "", NewBlobRepositoryError("sign", name, err)
	}
	expiry := time.Now().Add(ttl).Unix()
	sig := r.sign(name, expiry)
	return fmt.Sprintf("%s/%s?se=%d&sig=%s", r.baseURL, url.PathEscape(name), expiry, sig), nil
}

// SignedBaseURL returns a container-level URL prefix with a longer-lived
// signature, used when no specific document applies. It is a prefix, not a
// dereferenceable link: clients insert a blob name ahead of the query string
// and the container signature authorizes any blob under it.
func (r *LocalBlobRepository) SignedBaseURL() string {
	expiry := time.Now().Add(containerURLTTL).Unix()
	return fmt.Sprintf("%s/?se=%d&sig=%s", r.baseURL, expiry, r.sign("", expiry))
}

// Verify checks the `se`/`sig` parameters for a blob name. Both a per-blob
// signature and a container-level signature from SignedBaseURL are accepted.
func (r *LocalBlobRepository) Verify(name, expiryParam, sigParam string) error {
	expiry, err := strconv.ParseInt(expiryParam, 10, 64)
	if err != nil {
		return ErrSignatureInvalid
	}
	if time.Now().Unix() > expiry {
		return ErrSignatureInvalid
	}
	if hmac.Equal([]byte(r.sign(name, expiry)), []byte(sigParam)) {
		return nil
	}
	if hmac.Equal([]byte(r.sign("", expiry)), []byte(sigParam)) {
		return nil
	}
	return ErrSignatureInvalid
}

func (r *LocalBlobRepository) sign(name string, expiry int64) string {
	mac := hmac.New(sha256.New, r.signingKey)
	fmt.Fprintf(mac, "%s\n%d", name, expiry)
	return hex.EncodeToString(mac.Sum(nil))
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
