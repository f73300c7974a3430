package models

import "time"

// DocumentProcessingStatus tracks whether a stored document has been picked up
// by the ingestion pipeline yet.
type DocumentProcessingStatus int

const (
	DocumentNotProcessed DocumentProcessingStatus = iota
	DocumentSucceeded
	DocumentFailed
)

func (s DocumentProcessingStatus) String() string {
	switch s {
	case DocumentSucceeded:
		return "succeeded"
	case DocumentFailed:
		return "failed"
	default:
		return "not_processed"
	}
}

// DocumentResponse describes one stored document, with a signed time-limited
// URL for direct access.
type DocumentResponse struct {
	Name         string                   `json:"name"`
	ContentType  string                   `json:"content_type"`
	Size         int64                    `json:"size"`
	LastModified time.Time                `json:"last_modified"`
	URL          string                   `json:"url"`
	Status       DocumentProcessingStatus `json:"status"`
}

// UploadDocumentsResponse reports the outcome of a multi-file upload
type UploadDocumentsResponse struct {
	UploadedFiles []string `json:"uploaded_files"`
	IsSuccessful  bool     `json:"is_successful"`
	Error         string   `json:"error,omitempty"`
}
