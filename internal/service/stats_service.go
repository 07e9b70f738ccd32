package service

import (
	"context"
	"strings"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"

	"golang.org/x/sync/errgroup"
)

type StatsService interface {
	Stats(ctx context.Context) (dto.StatsResponse, error)
	DBInfo(ctx context.Context) (dto.DBInfoResponse, error)
}

type statsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

// Stats runs the four aggregate queries concurrently and fails if any of them does.
func (s *statsService) Stats(ctx context.Context) (dto.StatsResponse, error) {
	var (
		resp     dto.StatsResponse
		byStatus []repository.EstadoCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.TotalUsers, err = s.repo.Count(gctx, "users")
		return err
	})
	g.Go(func() (err error) {
		resp.TotalDocuments, err = s.repo.Count(gctx, "documents")
		return err
	})
	g.Go(func() (err error) {
		resp.TotalSubmissions, err = s.repo.Count(gctx, "submissions")
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.repo.CountSubmissionsByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dto.StatsResponse{}, err
	}

	resp.SubmissionsByStatus = make(map[string]int64, len(byStatus))
	for _, e := range byStatus {
		resp.SubmissionsByStatus[e.Status] = e.Count
	}
	return resp, nil
}

func (s *statsService) DBInfo(ctx context.Context) (dto.DBInfoResponse, error) {
	now, version, err := s.repo.ServerInfo(ctx)
	if err != nil {
		return dto.DBInfoResponse{}, err
	}
	// "PostgreSQL 16.4 on x86_64-pc-linux-gnu, ..." -> "PostgreSQL"
	if fields := strings.Fields(version); len(fields) > 0 {
		version = fields[0]
	}
	return dto.DBInfoResponse{
		CurrentTime:       now.Format(time.RFC3339Nano),
		PostgreSQLVersion: version,
	}, nil
}
