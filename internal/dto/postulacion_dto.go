package dto

import "time"

type CrearPostulacionRequest struct {
	UserEmail     string `json:"user_email"     validate:"required" msg:"El email es requerido"`
	TermsAccepted bool   `json:"terms_accepted"`
}

type PostulacionResponse struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	ReferenceNumber string    `json:"reference_number"`
	TermsAccepted   bool      `json:"terms_accepted"`
	Status          string    `json:"status"`
	SubmissionDate  time.Time `json:"submission_date"`
}

// PostulacionConUsuarioResponse adds the applicant's name and email to a submission.
type PostulacionConUsuarioResponse struct {
	PostulacionResponse
	Nombre *string `json:"nombre"`
	Email  string  `json:"email"`
}
