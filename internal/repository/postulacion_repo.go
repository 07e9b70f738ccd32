package repository

import (
	"context"
	"errors"

	"github.com/careguardpe-bit/careguard-backend/internal/model"

	"gorm.io/gorm"
)

// PostulacionRepository is append-only: there is no update or delete.
type PostulacionRepository interface {
	Create(ctx context.Context, p *model.Postulacion) error
	FindByID(ctx context.Context, id int64) (*model.Postulacion, error)
	ListByEmail(ctx context.Context, email string) ([]model.PostulacionConUsuario, error)
}

type postulacionRepo struct{ db *gorm.DB }

func NewPostulacionRepository(db *gorm.DB) PostulacionRepository { return &postulacionRepo{db: db} }

func (r *postulacionRepo) Create(ctx context.Context, p *model.Postulacion) error {
	var row model.Postulacion
	res := r.db.WithContext(ctx).Raw(`
INSERT INTO submissions (user_id, reference_number, terms_accepted)
VALUES (?, ?, ?)
RETURNING *`, p.UserID, p.ReferenceNumber, p.TermsAccepted).Scan(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("insert submissions returned no row")
	}
	*p = row
	return nil
}

func (r *postulacionRepo) FindByID(ctx context.Context, id int64) (*model.Postulacion, error) {
	var p model.Postulacion
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postulacionRepo) ListByEmail(ctx context.Context, email string) ([]model.PostulacionConUsuario, error) {
	list := make([]model.PostulacionConUsuario, 0)
	err := r.db.WithContext(ctx).
		Table("submissions s").
		Select("s.*, u.nombre, u.email").
		Joins("JOIN users u ON s.user_id = u.id").
		Where("u.email = ?", email).
		Order("s.submission_date DESC, s.id DESC").
		Find(&list).Error
	return list, err
}
