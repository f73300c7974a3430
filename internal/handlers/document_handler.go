package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"omniq/internal/repositories"
	"omniq/internal/services"
)

const maxUploadSize = 32 << 20 // 32 MB

// DocumentHandler handles HTTP requests for document storage operations
type DocumentHandler struct {
	documentService *services.DocumentService
	logger          *log.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService, logger *log.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// Upload handles multipart document uploads
// @Summary Upload documents
// @Description Upload one or more PDF documents to blob storage
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "PDF files to upload"
// @Success 200 {object} models.UploadDocumentsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Document upload from %s", r.RemoteAddr)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		h.sendError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	files := make([]services.UploadedFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			h.sendError(w, http.StatusBadRequest, fmt.Sprintf("Failed to open %s", header.Filename))
			return
		}
		defer file.Close()
		files = append(files, services.UploadedFile{Name: header.Filename, Content: file})
	}

	resp, err := h.documentService.Upload(r.Context(), files)
	if err != nil {
		h.logger.Printf("Upload failed: %v", err)
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("Upload failed: %v", err))
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// List handles document listing requests
// @Summary List documents
// @Description List stored documents with signed access URLs
// @Tags documents
// @Produce json
// @Success 200 {array} models.DocumentResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Document list request from %s", r.RemoteAddr)

	documents, err := h.documentService.ListDocuments(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list documents: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	h.sendJSON(w, http.StatusOK, documents)
}

// Content serves blob content for a valid signed URL
// @Summary Fetch document content
// @Description Stream a stored document; requires valid se/sig query parameters from a signed URL
// @Tags documents
// @Produce application/octet-stream
// @Param name path string true "Document name"
// @Param se query string true "Signature expiry (unix seconds)"
// @Param sig query string true "HMAC signature"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/content/{name} [get]
func (h *DocumentHandler) Content(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	expiry := r.URL.Query().Get("se")
	sig := r.URL.Query().Get("sig")

	reader, info, err := h.documentService.OpenContent(r.Context(), name, expiry, sig)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSignatureInvalid):
			h.sendError(w, http.StatusForbidden, "Signature invalid or expired")
		case errors.Is(err, repositories.ErrBlobNotFound):
			h.sendError(w, http.StatusNotFound, "Document not found")
		default:
			h.logger.Printf("Failed to open content %s: %v", name, err)
			h.sendError(w, http.StatusInternalServerError, "Failed to open document")
		}
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Printf("Failed to stream content %s: %v", name, err)
	}
}

func (h *DocumentHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *DocumentHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}
