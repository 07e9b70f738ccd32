package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// EstadoCount is one row of the submissions-by-status aggregate.
type EstadoCount struct {
	Status string
	Count  int64
}

// StatsRepository runs the read-only diagnostic queries.
type StatsRepository interface {
	Count(ctx context.Context, table string) (int64, error)
	CountSubmissionsByStatus(ctx context.Context) ([]EstadoCount, error)
	ServerInfo(ctx context.Context) (now time.Time, version string, err error)
}

type statsRepo struct{ db *gorm.DB }

func NewStatsRepository(db *gorm.DB) StatsRepository { return &statsRepo{db: db} }

func (r *statsRepo) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(table).Count(&n).Error
	return n, err
}

func (r *statsRepo) CountSubmissionsByStatus(ctx context.Context) ([]EstadoCount, error) {
	var rows []EstadoCount
	err := r.db.WithContext(ctx).
		Table("submissions").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepo) ServerInfo(ctx context.Context) (time.Time, string, error) {
	var row struct {
		CurrentTime time.Time
		PgVersion   string
	}
	err := r.db.WithContext(ctx).
		Raw("SELECT NOW() AS current_time, version() AS pg_version").
		Scan(&row).Error
	return row.CurrentTime, row.PgVersion, err
}
