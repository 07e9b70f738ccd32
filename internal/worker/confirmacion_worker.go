package worker

// confirmacion_worker.go
// Processes jobs from QueueConfirmacion: builds the PDF receipt of a
// submission and emails it to the applicant through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/model"

	"github.com/rs/zerolog/log"
)

const maxAttempts = 3

// Sender delivers one email with an optional attachment.
type Sender interface {
	Send(to, subject, body, attachmentPath string) error
}

// PostulacionFinder loads the data needed to build a receipt.
type PostulacionFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Postulacion, error)
}

type UsuarioFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Usuario, error)
}

type ConfirmacionWorker struct {
	postulaciones  PostulacionFinder
	usuarios       UsuarioFinder
	sender         Sender
	cb             *infra.CircuitBreaker
	pdfStoragePath string
	backoff        time.Duration
}

// NewConfirmacionWorker builds the worker. A nil sender disables email
// delivery; jobs are then acknowledged and only logged.
func NewConfirmacionWorker(
	postulaciones PostulacionFinder,
	usuarios UsuarioFinder,
	sender Sender,
	cb *infra.CircuitBreaker,
	pdfStoragePath string,
) *ConfirmacionWorker {
	return &ConfirmacionWorker{
		postulaciones:  postulaciones,
		usuarios:       usuarios,
		sender:         sender,
		cb:             cb,
		pdfStoragePath: pdfStoragePath,
		backoff:        time.Second,
	}
}

// Process handles a single confirmation job:
//  1. Load the submission and its applicant
//  2. Generate the receipt PDF
//  3. Send it by email with exponential backoff (max 3 attempts)
func (w *ConfirmacionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ConfirmacionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	if w.sender == nil {
		log.Info().Int64("submission_id", payload.SubmissionID).Msg("confirmacion_worker: mail disabled, skipping")
		return nil
	}

	p, err := w.postulaciones.FindByID(ctx, payload.SubmissionID)
	if err != nil {
		return fmt.Errorf("load submission %d: %w", payload.SubmissionID, err)
	}
	u, err := w.usuarios.FindByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", p.UserID, err)
	}

	pdfPath, err := infra.GenerateConstanciaPDF(p, u, w.pdfStoragePath)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Careguard: postulación %s recibida", p.ReferenceNumber)
	body := fmt.Sprintf(
		"Hola,\n\nRecibimos tu postulación. Tu número de referencia es %s.\nAdjuntamos la constancia en PDF.\n\nEquipo Careguard",
		p.ReferenceNumber,
	)

	err = withRetry(ctx, maxAttempts, w.backoff, func(attempt int) error {
		sendErr := w.send(u.Email, subject, body, pdfPath)
		if sendErr != nil {
			log.Warn().
				Err(sendErr).
				Int64("submission_id", p.ID).
				Int("attempt", attempt+1).
				Msg("confirmacion_worker: send failed")
		}
		return sendErr
	})
	if err != nil {
		return fmt.Errorf("send confirmation to %s: %w", u.Email, err)
	}

	log.Info().
		Int64("submission_id", p.ID).
		Str("reference_number", p.ReferenceNumber).
		Str("to", u.Email).
		Msg("confirmacion_worker: receipt sent")
	return nil
}

func (w *ConfirmacionWorker) send(to, subject, body, attachment string) error {
	if w.cb == nil {
		return w.sender.Send(to, subject, body, attachment)
	}
	return w.cb.Execute(func() error {
		return w.sender.Send(to, subject, body, attachment)
	})
}

// withRetry calls fn up to attempts times with exponential backoff starting
// at base: attempt 1 immediate, then base, 2*base, ...
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, attempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := range attempts {
		if i > 0 {
			wait := base << (i - 1)
			select {
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
