package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/model"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UsuarioService owns applicant profiles.
type UsuarioService interface {
	Guardar(ctx context.Context, req dto.GuardarUsuarioRequest) (dto.GuardarUsuarioResult, error)
	ObtenerPorEmail(ctx context.Context, email string) (dto.UsuarioResponse, error)
}

type usuarioService struct {
	repo repository.UsuarioRepository
}

func NewUsuarioService(repo repository.UsuarioRepository) UsuarioService {
	return &usuarioService{repo: repo}
}

func mapUsuario(u model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:              u.ID,
		Nombre:          u.Nombre,
		Email:           u.Email,
		Telefono:        u.Telefono,
		Direccion:       u.Direccion,
		Especialidades:  u.Especialidades,
		VideoConfirmado: u.VideoConfirmado,
		CountryID:       u.CountryID,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (s *usuarioService) Guardar(ctx context.Context, req dto.GuardarUsuarioRequest) (dto.GuardarUsuarioResult, error) {
	especialidades, err := NormalizarEspecialidades(req.Especialidades)
	if err != nil {
		return dto.GuardarUsuarioResult{}, err
	}

	u := &model.Usuario{
		Nombre:          req.Nombre,
		Email:           req.Email,
		Telefono:        req.Telefono,
		Direccion:       req.Direccion,
		Especialidades:  especialidades,
		VideoConfirmado: req.VideoConfirmado,
		CountryID:       int64(req.CountryID),
	}
	creado, err := s.repo.Upsert(ctx, u)
	if err != nil {
		if infra.IsForeignKeyViolation(err, "") {
			return dto.GuardarUsuarioResult{}, ErrPaisNoEncontrado
		}
		return dto.GuardarUsuarioResult{}, err
	}

	log.Info().Str("email", u.Email).Bool("creado", creado).Msg("usuario guardado")
	return dto.GuardarUsuarioResult{Usuario: mapUsuario(*u), Creado: creado}, nil
}

func (s *usuarioService) ObtenerPorEmail(ctx context.Context, email string) (dto.UsuarioResponse, error) {
	u, err := s.repo.FindByEmailConPais(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UsuarioResponse{}, ErrUsuarioNoEncontrado
		}
		return dto.UsuarioResponse{}, err
	}
	resp := mapUsuario(u.Usuario)
	resp.CountryName = u.CountryName
	return resp, nil
}

// NormalizarEspecialidades turns the raw JSON value into the text stored in
// users.especialidades: arrays and objects become compact JSON, a JSON string
// is stored as its content, null or absent stores NULL, and any other scalar
// keeps its literal JSON text.
func NormalizarEspecialidades(raw json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &s, nil
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		s := buf.String()
		return &s, nil
	default:
		s := string(trimmed)
		return &s, nil
	}
}
