package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/model"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// sniffLen is how many leading bytes are inspected to detect the real content type.
const sniffLen = 3072

// AllowedMimeTypes lists the content types accepted for documents.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// FileStore is the disk side of document intake.
type FileStore interface {
	Save(originalName string, r io.Reader) (infra.StoredFile, error)
	Remove(path string) error
}

type DocumentoService interface {
	Subir(ctx context.Context, in dto.SubirDocumentoInput) (dto.DocumentoResponse, error)
	ListarPorEmail(ctx context.Context, email string) ([]dto.DocumentoResponse, error)
}

type documentoService struct {
	usuarios   repository.UsuarioRepository
	documentos repository.DocumentoRepository
	store      FileStore
	maxBytes   int64
	urlPrefix  string
}

// NewDocumentoService wires document intake. urlPrefix is the public path
// under which stored files are served, e.g. "/uploads/documents".
func NewDocumentoService(
	usuarios repository.UsuarioRepository,
	documentos repository.DocumentoRepository,
	store FileStore,
	maxBytes int64,
	urlPrefix string,
) DocumentoService {
	return &documentoService{
		usuarios:   usuarios,
		documentos: documentos,
		store:      store,
		maxBytes:   maxBytes,
		urlPrefix:  strings.TrimSuffix(urlPrefix, "/"),
	}
}

func (s *documentoService) mapDocumento(d model.Documento) dto.DocumentoResponse {
	return dto.DocumentoResponse{
		ID:           d.ID,
		UserID:       d.UserID,
		DocumentType: d.DocumentType,
		Filename:     d.Filename,
		OriginalName: d.OriginalName,
		FileSize:     d.FileSize,
		MimeType:     d.MimeType,
		FilePath:     d.FilePath,
		URL:          path.Join(s.urlPrefix, d.Filename),
		UploadedAt:   d.UploadedAt,
	}
}

// Subir validates the upload, stores the file and replaces any previous
// document of the same type for the user. Nothing is written to disk unless
// the content type is allowed and the owner exists.
func (s *documentoService) Subir(ctx context.Context, in dto.SubirDocumentoInput) (dto.DocumentoResponse, error) {
	if strings.TrimSpace(in.DocumentType) == "" {
		return dto.DocumentoResponse{}, ErrTipoDocumentoRequerido
	}

	mimeType, content, err := checkContentType(in.MimeType, in.Content)
	if err != nil {
		return dto.DocumentoResponse{}, err
	}

	usuario, err := s.usuarios.FindByEmail(ctx, in.UserEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentoResponse{}, ErrUsuarioNoEncontrado
		}
		return dto.DocumentoResponse{}, err
	}

	limited := io.LimitReader(content, s.maxBytes+1)
	stored, err := s.store.Save(in.OriginalName, limited)
	if err != nil {
		return dto.DocumentoResponse{}, err
	}
	if stored.Size > s.maxBytes {
		s.removeFile(stored.Path)
		return dto.DocumentoResponse{}, ErrArchivoMuyGrande
	}

	doc := &model.Documento{
		UserID:       usuario.ID,
		DocumentType: in.DocumentType,
		Filename:     stored.Filename,
		OriginalName: in.OriginalName,
		FileSize:     stored.Size,
		MimeType:     mimeType,
		FilePath:     stored.Path,
	}
	previos, err := s.documentos.Reemplazar(ctx, doc)
	if err != nil {
		s.removeFile(stored.Path)
		return dto.DocumentoResponse{}, err
	}

	for _, p := range previos {
		if p.FilePath != doc.FilePath {
			s.removeFile(p.FilePath)
		}
	}

	log.Info().
		Int64("user_id", usuario.ID).
		Str("document_type", doc.DocumentType).
		Str("filename", doc.Filename).
		Int("reemplazados", len(previos)).
		Msg("documento subido")
	return s.mapDocumento(*doc), nil
}

func (s *documentoService) ListarPorEmail(ctx context.Context, email string) ([]dto.DocumentoResponse, error) {
	list, err := s.documentos.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	result := make([]dto.DocumentoResponse, 0, len(list))
	for _, d := range list {
		result = append(result, s.mapDocumento(d))
	}
	return result, nil
}

func (s *documentoService) removeFile(p string) {
	if err := s.store.Remove(p); err != nil {
		log.Warn().Err(err).Str("path", p).Msg("no se pudo eliminar archivo")
	}
}

// checkContentType accepts the upload only when the declared type is allowed
// and the leading bytes agree with it. The returned reader replays the
// inspected bytes.
func checkContentType(declared string, r io.Reader) (string, io.Reader, error) {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !AllowedMimeTypes[mediaType] {
		return "", nil, ErrTipoArchivoNoPermitido
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]

	if !mimetype.Detect(head).Is(mediaType) {
		return "", nil, ErrTipoArchivoNoPermitido
	}
	return mediaType, io.MultiReader(bytes.NewReader(head), r), nil
}
