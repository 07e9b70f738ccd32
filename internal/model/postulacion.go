package model

import "time"

// Postulacion is an application event. Rows are append-only.
// Status: "pendiente" | "en_revision" | "aprobada" | "rechazada"
type Postulacion struct {
	ID              int64     `gorm:"primaryKey"`
	UserID          int64     `gorm:"not null;index"`
	ReferenceNumber string    `gorm:"uniqueIndex;not null"`
	TermsAccepted   bool      `gorm:"not null;default:false"`
	Status          string    `gorm:"not null;default:pendiente"`
	SubmissionDate  time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (Postulacion) TableName() string { return "submissions" }

// PostulacionConUsuario is a submission joined with the applicant's name and email.
type PostulacionConUsuario struct {
	Postulacion `gorm:"embedded"`
	Nombre      *string
	Email       string
}
