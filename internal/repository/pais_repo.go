package repository

import (
	"context"

	"github.com/careguardpe-bit/careguard-backend/internal/model"

	"gorm.io/gorm"
)

// PaisRepository reads the country reference table.
type PaisRepository interface {
	Listar(ctx context.Context) ([]model.Pais, error)
	ObtenerPorID(ctx context.Context, id int64) (*model.Pais, error)
}

type paisRepository struct{ db *gorm.DB }

func NewPaisRepository(db *gorm.DB) PaisRepository {
	return &paisRepository{db: db}
}

func (r *paisRepository) Listar(ctx context.Context) ([]model.Pais, error) {
	var list []model.Pais
	err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error
	return list, err
}

func (r *paisRepository) ObtenerPorID(ctx context.Context, id int64) (*model.Pais, error) {
	var p model.Pais
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
