package service

import (
	"context"
	"errors"

	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"

	"gorm.io/gorm"
)

type PaisService interface {
	Listar(ctx context.Context) ([]dto.PaisResponse, error)
	Seleccionar(ctx context.Context, id int64) (dto.PaisResponse, error)
}

type paisService struct {
	repo repository.PaisRepository
}

func NewPaisService(repo repository.PaisRepository) PaisService {
	return &paisService{repo: repo}
}

func (s *paisService) Listar(ctx context.Context) ([]dto.PaisResponse, error) {
	paises, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.PaisResponse, 0, len(paises))
	for _, p := range paises {
		result = append(result, dto.PaisResponse{ID: p.ID, Country: p.Country})
	}
	return result, nil
}

// Seleccionar only confirms the country exists; nothing is stored.
func (s *paisService) Seleccionar(ctx context.Context, id int64) (dto.PaisResponse, error) {
	p, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaisResponse{}, ErrPaisNoEncontrado
		}
		return dto.PaisResponse{}, err
	}
	return dto.PaisResponse{ID: p.ID, Country: p.Country}, nil
}
