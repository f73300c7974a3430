package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"omniq/internal/models"
	"omniq/internal/repositories"
)

const documentURLTTL = 30 * time.Minute

// UploadedFile is one file received from a multipart upload
type UploadedFile struct {
	Name    string
	Content io.Reader
}

// DocumentService manages uploaded documents in blob storage. Index
// population is handled by the external ingestion trigger watching the
// store; this service only uploads, lists and serves.
type DocumentService struct {
	blobRepo repositories.BlobRepository
	logger   *log.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(blobRepo repositories.BlobRepository, logger *log.Logger) *DocumentService {
	return &DocumentService{
		blobRepo: blobRepo,
		logger:   logger,
	}
}

// Upload stores the PDF files among the given uploads. Non-PDF files are
// skipped; an upload with no stored files reports failure.
func (s *DocumentService) Upload(ctx context.Context, files []UploadedFile) (*models.UploadDocumentsResponse, error) {
	uploaded := []string{}
	for _, file := range files {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".pdf") {
			s.logger.Printf("Skipping non-PDF upload: %s", file.Name)
			continue
		}
		if err := s.blobRepo.Upload(ctx, file.Name, "application/pdf", file.Content); err != nil {
			return nil, fmt.Errorf("upload %s: %w", file.Name, err)
		}
		uploaded = append(uploaded, file.Name)
	}

	if len(uploaded) == 0 {
		return &models.UploadDocumentsResponse{
			UploadedFiles: uploaded,
			IsSuccessful:  false,
			Error:         "No files were uploaded. Either the files already exist or the files are not PDFs.",
		}, nil
	}

	return &models.UploadDocumentsResponse{
		UploadedFiles: uploaded,
		IsSuccessful:  true,
	}, nil
}

// ListDocuments returns every stored document with a signed access URL.
// Signing failure degrades to the container URL rather than dropping the
// document from the listing.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]models.DocumentResponse, error) {
	blobs, err := s.blobRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	documents := make([]models.DocumentResponse, 0, len(blobs))
	for _, blob := range blobs {
		url, err := s.blobRepo.SignedURL(blob.Name, documentURLTTL)
		if err != nil {
			s.logger.Printf("Failed to sign URL for %s: %v", blob.Name, err)
			url = s.blobRepo.SignedBaseURL()
		}
		documents = append(documents, models.DocumentResponse{
			Name:         blob.Name,
			ContentType:  blob.ContentType,
			Size:         blob.Size,
			LastModified: blob.LastModified,
			URL:          url,
			Status:       models.DocumentSucceeded,
		})
	}
	return documents, nil
}

// OpenContent verifies a signed content URL and opens the blob
func (s *DocumentService) OpenContent(ctx context.Context, name, expiryParam, sigParam string) (io.ReadCloser, *repositories.BlobInfo, error) {
	if err := s.blobRepo.Verify(name, expiryParam, sigParam); err != nil {
		return nil, nil, err
	}
	reader, info, err := s.blobRepo.Open(ctx, name)
	if err != nil {
		var repoErr *repositories.BlobRepositoryError
		if errors.As(err, &repoErr) && errors.Is(repoErr.Err, repositories.ErrBlobNotFound) {
			return nil, nil, repositories.ErrBlobNotFound
		}
		return nil, nil, err
	}
	return reader, info, nil
}
