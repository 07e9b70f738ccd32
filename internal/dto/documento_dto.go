package dto

import (
	"io"
	"time"
)

// SubirDocumentoInput carries one validated upload from the handler to the service.
type SubirDocumentoInput struct {
	UserEmail    string
	DocumentType string
	OriginalName string
	MimeType     string
	Content      io.Reader
}

type DocumentoResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	DocumentType string    `json:"document_type"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	FilePath     string    `json:"file_path"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
