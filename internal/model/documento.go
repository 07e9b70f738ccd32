package model

import "time"

// Documento is the metadata of one uploaded file.
// At most one row exists per (UserID, DocumentType).
type Documento struct {
	ID           int64  `gorm:"primaryKey"`
	UserID       int64  `gorm:"not null;uniqueIndex:idx_documents_user_type"`
	DocumentType string `gorm:"not null;uniqueIndex:idx_documents_user_type"`
	// Filename is the server-generated name on disk
	Filename     string    `gorm:"not null"`
	OriginalName string    `gorm:"not null"`
	FileSize     int64     `gorm:"not null"`
	MimeType     string    `gorm:"not null"`
	FilePath     string    `gorm:"not null"`
	UploadedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (Documento) TableName() string { return "documents" }
