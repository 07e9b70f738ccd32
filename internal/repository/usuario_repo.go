package repository

import (
	"context"

	"github.com/careguardpe-bit/careguard-backend/internal/model"

	"gorm.io/gorm"
)

type UsuarioRepository interface {
	// Upsert inserts or updates the row keyed by email in one statement and
	// fills u with the stored row. creado is true when the row was inserted.
	Upsert(ctx context.Context, u *model.Usuario) (creado bool, err error)
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	FindByEmailConPais(ctx context.Context, email string) (*model.UsuarioConPais, error)
	FindByID(ctx context.Context, id int64) (*model.Usuario, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

// xmax is 0 only for a tuple created by this statement; an ON CONFLICT update
// stamps it with the current transaction id.
const upsertUsuarioSQL = `
INSERT INTO users (nombre, email, telefono, direccion, especialidades, video_confirmado, country_id)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (email) DO UPDATE SET
    nombre           = EXCLUDED.nombre,
    telefono         = EXCLUDED.telefono,
    direccion        = EXCLUDED.direccion,
    especialidades   = EXCLUDED.especialidades,
    video_confirmado = EXCLUDED.video_confirmado,
    country_id       = EXCLUDED.country_id,
    updated_at       = CURRENT_TIMESTAMP
RETURNING id, nombre, email, telefono, direccion, especialidades, video_confirmado, country_id,
          created_at, updated_at, (xmax = 0) AS inserted`

type upsertUsuarioRow struct {
	model.Usuario `gorm:"embedded"`
	Inserted      bool
}

func (r *usuarioRepo) Upsert(ctx context.Context, u *model.Usuario) (bool, error) {
	var row upsertUsuarioRow
	err := r.db.WithContext(ctx).Raw(upsertUsuarioSQL,
		u.Nombre, u.Email, u.Telefono, u.Direccion, u.Especialidades, u.VideoConfirmado, u.CountryID,
	).Scan(&row).Error
	if err != nil {
		return false, err
	}
	*u = row.Usuario
	return row.Inserted, nil
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FindByEmailConPais(ctx context.Context, email string) (*model.UsuarioConPais, error) {
	var u model.UsuarioConPais
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.*, c.country AS country_name").
		Joins("LEFT JOIN country c ON u.country_id = c.id").
		Where("u.email = ?", email).
		Take(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FindByID(ctx context.Context, id int64) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
