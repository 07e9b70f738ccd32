package dto

import (
	"encoding/json"
	"time"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

// GuardarUsuarioRequest is the profile upsert body. CountryID is declared
// before Email so that a body missing both reports the country first. The
// country id may arrive as a number or as a numeric string.
type GuardarUsuarioRequest struct {
	CountryID       ID              `json:"country_id"       validate:"required" msg:"El país es requerido" swaggertype:"integer"`
	Email           string          `json:"email"            validate:"required" msg:"El email es requerido"`
	Nombre          *string         `json:"nombre"`
	Telefono        *string         `json:"telefono"`
	Direccion       *string         `json:"direccion"`
	Especialidades  json.RawMessage `json:"especialidades"`
	VideoConfirmado bool            `json:"video_confirmado"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID              int64     `json:"id"`
	Nombre          *string   `json:"nombre"`
	Email           string    `json:"email"`
	Telefono        *string   `json:"telefono"`
	Direccion       *string   `json:"direccion"`
	Especialidades  *string   `json:"especialidades"`
	VideoConfirmado bool      `json:"video_confirmado"`
	CountryID       int64     `json:"country_id"`
	CountryName     *string   `json:"country_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GuardarUsuarioResult tells the handler whether the upsert created the row.
type GuardarUsuarioResult struct {
	Usuario UsuarioResponse
	Creado  bool
}
