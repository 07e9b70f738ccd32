package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/model"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	maxIntentosReferencia = 5
	referenciaConstraint  = "submissions_reference_number_key"
)

// Notificador receives submissions that need a confirmation sent.
// A nil Notificador disables confirmations.
type Notificador interface {
	EnqueueConfirmacion(ctx context.Context, postulacionID int64) error
}

type PostulacionService interface {
	Crear(ctx context.Context, req dto.CrearPostulacionRequest) (dto.PostulacionResponse, error)
	ListarPorEmail(ctx context.Context, email string) ([]dto.PostulacionConUsuarioResponse, error)
}

type postulacionService struct {
	usuarios      repository.UsuarioRepository
	postulaciones repository.PostulacionRepository
	notificador   Notificador
	generar       func(now time.Time) string
	now           func() time.Time
}

func NewPostulacionService(
	usuarios repository.UsuarioRepository,
	postulaciones repository.PostulacionRepository,
	notificador Notificador,
) PostulacionService {
	return &postulacionService{
		usuarios:      usuarios,
		postulaciones: postulaciones,
		notificador:   notificador,
		generar:       GenerarReferencia,
		now:           time.Now,
	}
}

// GenerarReferencia returns a reference of the form CG-<year>-<6 digits>.
func GenerarReferencia(now time.Time) string {
	return fmt.Sprintf("CG-%d-%06d", now.Year(), rand.IntN(1_000_000))
}

func mapPostulacion(p model.Postulacion) dto.PostulacionResponse {
	return dto.PostulacionResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		ReferenceNumber: p.ReferenceNumber,
		TermsAccepted:   p.TermsAccepted,
		Status:          p.Status,
		SubmissionDate:  p.SubmissionDate,
	}
}

func (s *postulacionService) Crear(ctx context.Context, req dto.CrearPostulacionRequest) (dto.PostulacionResponse, error) {
	usuario, err := s.usuarios.FindByEmail(ctx, req.UserEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostulacionResponse{}, ErrUsuarioNoEncontrado
		}
		return dto.PostulacionResponse{}, err
	}

	var p *model.Postulacion
	for intento := 1; ; intento++ {
		p = &model.Postulacion{
			UserID:          usuario.ID,
			ReferenceNumber: s.generar(s.now()),
			TermsAccepted:   req.TermsAccepted,
		}
		err = s.postulaciones.Create(ctx, p)
		if err == nil {
			break
		}
		if !infra.IsUniqueViolation(err, referenciaConstraint) {
			return dto.PostulacionResponse{}, err
		}
		log.Warn().Str("reference_number", p.ReferenceNumber).Int("intento", intento).Msg("número de referencia repetido")
		if intento >= maxIntentosReferencia {
			return dto.PostulacionResponse{}, ErrReferenciaAgotada
		}
	}

	log.Info().
		Int64("submission_id", p.ID).
		Int64("user_id", usuario.ID).
		Str("reference_number", p.ReferenceNumber).
		Msg("postulación registrada")

	if s.notificador != nil {
		if err := s.notificador.EnqueueConfirmacion(ctx, p.ID); err != nil {
			log.Error().Err(err).Int64("submission_id", p.ID).Msg("no se pudo encolar la confirmación")
		}
	}
	return mapPostulacion(*p), nil
}

func (s *postulacionService) ListarPorEmail(ctx context.Context, email string) ([]dto.PostulacionConUsuarioResponse, error) {
	list, err := s.postulaciones.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	result := make([]dto.PostulacionConUsuarioResponse, 0, len(list))
	for _, p := range list {
		result = append(result, dto.PostulacionConUsuarioResponse{
			PostulacionResponse: mapPostulacion(p.Postulacion),
			Nombre:              p.Nombre,
			Email:               p.Email,
		})
	}
	return result, nil
}
