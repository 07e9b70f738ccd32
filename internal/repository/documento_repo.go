package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/model"

	"gorm.io/gorm"
)

// maxReemplazoAttempts bounds retries when two uploads of the same
// (user, type) race and the loser hits documents_user_type_key.
const maxReemplazoAttempts = 3

type DocumentoRepository interface {
	// Reemplazar deletes any row for (d.UserID, d.DocumentType) and inserts d
	// in one transaction. It returns the superseded rows so their files can be removed.
	Reemplazar(ctx context.Context, d *model.Documento) ([]model.Documento, error)
	ListByEmail(ctx context.Context, email string) ([]model.Documento, error)
	// ReferencedFilenames returns the subset of names that some row points to.
	ReferencedFilenames(ctx context.Context, names []string) (map[string]bool, error)
}

type documentoRepo struct{ db *gorm.DB }

func NewDocumentoRepository(db *gorm.DB) DocumentoRepository { return &documentoRepo{db: db} }

const insertDocumentoSQL = `
INSERT INTO documents (user_id, document_type, filename, original_name, file_size, mime_type, file_path)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING *`

func (r *documentoRepo) Reemplazar(ctx context.Context, d *model.Documento) ([]model.Documento, error) {
	var (
		previos []model.Documento
		err     error
	)
	for attempt := 1; attempt <= maxReemplazoAttempts; attempt++ {
		previos, err = r.reemplazarTx(ctx, d)
		if err == nil || !infra.IsUniqueViolation(err, "documents_user_type_key") {
			return previos, err
		}
	}
	return nil, err
}

func (r *documentoRepo) reemplazarTx(ctx context.Context, d *model.Documento) ([]model.Documento, error) {
	var previos []model.Documento
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes replacements of the same (user, type). Released at commit.
		lockKey := fmt.Sprintf("documents:%d:%s", d.UserID, d.DocumentType)
		if err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext(?))`, lockKey).Error; err != nil {
			return err
		}

		if err := tx.Raw(
			`DELETE FROM documents WHERE user_id = ? AND document_type = ? RETURNING *`,
			d.UserID, d.DocumentType,
		).Scan(&previos).Error; err != nil {
			return err
		}

		var nuevo model.Documento
		res := tx.Raw(insertDocumentoSQL,
			d.UserID, d.DocumentType, d.Filename, d.OriginalName, d.FileSize, d.MimeType, d.FilePath,
		).Scan(&nuevo)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("insert documents returned no row")
		}
		*d = nuevo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previos, nil
}

func (r *documentoRepo) ListByEmail(ctx context.Context, email string) ([]model.Documento, error) {
	list := make([]model.Documento, 0)
	err := r.db.WithContext(ctx).
		Table("documents d").
		Select("d.*").
		Joins("JOIN users u ON d.user_id = u.id").
		Where("u.email = ?", email).
		Order("d.uploaded_at DESC, d.id DESC").
		Find(&list).Error
	return list, err
}

func (r *documentoRepo) ReferencedFilenames(ctx context.Context, names []string) (map[string]bool, error) {
	found := make(map[string]bool, len(names))
	if len(names) == 0 {
		return found, nil
	}
	var rows []string
	err := r.db.WithContext(ctx).
		Model(&model.Documento{}).
		Where("filename IN ?", names).
		Pluck("filename", &rows).Error
	if err != nil {
		return nil, err
	}
	for _, n := range rows {
		found[n] = true
	}
	return found, nil
}
