package model

import "time"

// Usuario is an applicant profile. Email is the natural key for upserts.
// Especialidades holds JSON text regardless of the shape the client sent.
type Usuario struct {
	ID              int64 `gorm:"primaryKey"`
	Nombre          *string
	Email           string `gorm:"uniqueIndex;not null"`
	Telefono        *string
	Direccion       *string
	Especialidades  *string `gorm:"type:text"`
	VideoConfirmado bool    `gorm:"not null;default:false"`
	CountryID       int64   `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Usuario) TableName() string { return "users" }

// UsuarioConPais is a Usuario joined with its country display name.
type UsuarioConPais struct {
	Usuario     `gorm:"embedded"`
	CountryName *string `gorm:"column:country_name"`
}
