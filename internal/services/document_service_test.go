package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"omniq/internal/models"
	"omniq/internal/repositories"
)

// ============================================================================
// Upload
// ============================================================================

func TestUpload_StoresPDFs(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	blobRepo.On("Upload", mock.Anything, "Benefit_Options.pdf", "application/pdf", mock.Anything).Return(nil)
	blobRepo.On("Upload", mock.Anything, "Northwind_Standard.PDF", "application/pdf", mock.Anything).Return(nil)

	service := NewDocumentService(blobRepo, testLogger())
	response, err := service.Upload(context.Background(), []UploadedFile{
		{Name: "Benefit_Options.pdf", Content: strings.NewReader("%PDF-1.7")},
		{Name: "Northwind_Standard.PDF", Content: strings.NewReader("%PDF-1.7")},
	})

	require.NoError(t, err)
	assert.True(t, response.IsSuccessful)
	assert.Equal(t, []string{"Benefit_Options.pdf", "Northwind_Standard.PDF"}, response.UploadedFiles)
	blobRepo.AssertExpectations(t)
}

func TestUpload_SkipsNonPDFs(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	blobRepo.On("Upload", mock.Anything, "report.pdf", "application/pdf", mock.Anything).Return(nil)

	service := NewDocumentService(blobRepo, testLogger())
	response, err := service.Upload(context.Background(), []UploadedFile{
		{Name: "notes.txt", Content: strings.NewReader("plain text")},
		{Name: "report.pdf", Content: strings.NewReader("%PDF-1.7")},
	})

	require.NoError(t, err)
	assert.True(t, response.IsSuccessful)
	assert.Equal(t, []string{"report.pdf"}, response.UploadedFiles)
	blobRepo.AssertNumberOfCalls(t, "Upload", 1)
}

func TestUpload_NothingStoredReportsFailure(t *testing.T) {
	blobRepo := new(MockBlobRepository)

	service := NewDocumentService(blobRepo, testLogger())
	response, err := service.Upload(context.Background(), []UploadedFile{
		{Name: "notes.txt", Content: strings.NewReader("plain text")},
	})

	require.NoError(t, err)
	assert.False(t, response.IsSuccessful)
	assert.Empty(t, response.UploadedFiles)
	assert.NotEmpty(t, response.Error)
	blobRepo.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_StoreErrorFails(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	storeErr := errors.New("disk full")
	blobRepo.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storeErr)

	service := NewDocumentService(blobRepo, testLogger())
	response, err := service.Upload(context.Background(), []UploadedFile{
		{Name: "report.pdf", Content: strings.NewReader("%PDF-1.7")},
	})

	require.ErrorIs(t, err, storeErr)
	assert.Nil(t, response)
}

// ============================================================================
// ListDocuments
// ============================================================================

func TestListDocuments(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	modified := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	blobRepo.On("List", mock.Anything).Return([]repositories.BlobInfo{
		{Name: "a.pdf", ContentType: "application/pdf", Size: 1024, LastModified: modified},
		{Name: "b.pdf", ContentType: "application/pdf", Size: 2048, LastModified: modified},
	}, nil)
	blobRepo.On("SignedURL", "a.pdf", documentURLTTL).Return("https://blobs.local/content/a.pdf?se=1&sig=a", nil)
	blobRepo.On("SignedURL", "b.pdf", documentURLTTL).Return("https://blobs.local/content/b.pdf?se=1&sig=b", nil)

	service := NewDocumentService(blobRepo, testLogger())
	documents, err := service.ListDocuments(context.Background())

	require.NoError(t, err)
	require.Len(t, documents, 2)
	assert.Equal(t, models.DocumentResponse{
		Name:         "a.pdf",
		ContentType:  "application/pdf",
		Size:         1024,
		LastModified: modified,
		URL:          "https://blobs.local/content/a.pdf?se=1&sig=a",
		Status:       models.DocumentSucceeded,
	}, documents[0])
}

func TestListDocuments_SigningFailureDegradesToBaseURL(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	blobRepo.On("List", mock.Anything).Return([]repositories.BlobInfo{{Name: "a.pdf"}}, nil)
	blobRepo.On("SignedURL", "a.pdf", documentURLTTL).Return("", errors.New("signing key unavailable"))
	blobRepo.On("SignedBaseURL").Return("https://blobs.local/content?se=1&sig=base")

	service := NewDocumentService(blobRepo, testLogger())
	documents, err := service.ListDocuments(context.Background())

	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "https://blobs.local/content?se=1&sig=base", documents[0].URL)
}

func TestListDocuments_Empty(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	blobRepo.On("List", mock.Anything).Return([]repositories.BlobInfo{}, nil)

	service := NewDocumentService(blobRepo, testLogger())
	documents, err := service.ListDocuments(context.Background())

	require.NoError(t, err)
	assert.Empty(t, documents)
}

// ============================================================================
// OpenContent
// ============================================================================

func TestOpenContent_VerifiesBeforeOpening(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	blobRepo.On("Verify", "a.pdf", "1700000000", "sig").Return(nil)
	blobRepo.On("Open", mock.Anything, "a.pdf").Return(io.NopCloser(strings.NewReader("%PDF-1.7")), &repositories.BlobInfo{Name: "a.pdf", ContentType: "application/pdf"}, nil)

	service := NewDocumentService(blobRepo, testLogger())
	reader, info, err := service.OpenContent(context.Background(), "a.pdf", "1700000000", "sig")

	require.NoError(t, err)
	require.NotNil(t, reader)
	defer reader.Close()
	assert.Equal(t, "application/pdf", info.ContentType)
}

func TestOpenContent_BadSignatureNeverOpens(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	blobRepo.On("Verify", "a.pdf", "1700000000", "tampered").Return(repositories.ErrSignatureInvalid)

	service := NewDocumentService(blobRepo, testLogger())
	reader, info, err := service.OpenContent(context.Background(), "a.pdf", "1700000000", "tampered")

	assert.ErrorIs(t, err, repositories.ErrSignatureInvalid)
	assert.Nil(t, reader)
	assert.Nil(t, info)
	blobRepo.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestOpenContent_MissingBlob(t *testing.T) {
	blobRepo := new(MockBlobRepository)
	blobRepo.On("Verify", "missing.pdf", "1700000000", "sig").Return(nil)
	blobRepo.On("Open", mock.Anything, "missing.pdf").Return(nil, nil, &repositories.BlobRepositoryError{
		Operation: "open",
		Err:       repositories.ErrBlobNotFound,
	})

	service := NewDocumentService(blobRepo, testLogger())
	reader, _, err := service.OpenContent(context.Background(), "missing.pdf", "1700000000", "sig")

	assert.ErrorIs(t, err, repositories.ErrBlobNotFound)
	assert.Nil(t, reader)
}
