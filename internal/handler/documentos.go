package handler

import (
	"errors"
	"net/http"

	"github.com/careguardpe-bit/careguard-backend/internal/apierror"
	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/middleware"
	"github.com/careguardpe-bit/careguard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

const (
	// formOverhead is the body allowance for the non-file fields and multipart framing.
	formOverhead = 1 << 20

	msgErrorSubida = "Error en la subida del archivo"
)

var documentUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "careguard_document_uploads_total",
		Help: "Subidas de documentos por resultado",
	},
	[]string{"result"},
)

type DocumentosHandler struct {
	svc      service.DocumentoService
	maxBytes int64
}

func NewDocumentosHandler(svc service.DocumentoService, maxBytes int64) *DocumentosHandler {
	return &DocumentosHandler{svc: svc, maxBytes: maxBytes}
}

// Subir godoc
// @Summary  Sube un documento y reemplaza el anterior del mismo tipo
// @Tags     documentos
// @Accept   multipart/form-data
// @Produce  json
// @Param    document      formData file   true "Archivo (JPEG, PNG o PDF)"
// @Param    user_email    formData string true "Email del postulante"
// @Param    document_type formData string true "Tipo de documento"
// @Success  200 {object} apierror.Response
// @Failure  400 {object} apierror.Response
// @Failure  404 {object} apierror.Response
// @Router   /api/documents [post]
func (h *DocumentosHandler) Subir(c *gin.Context) {
	limit := h.maxBytes + formOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	// maxMemory equals the body cap so parts never spill to temp files.
	if err := c.Request.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.rechazar(c, "File too large")
			return
		}
		documentUploadsTotal.WithLabelValues("sin_archivo").Inc()
		c.JSON(http.StatusBadRequest, apierror.New("No se recibió ningún archivo"))
		return
	}

	fh, err := c.FormFile("document")
	if err != nil {
		documentUploadsTotal.WithLabelValues("sin_archivo").Inc()
		c.JSON(http.StatusBadRequest, apierror.New("No se recibió ningún archivo"))
		return
	}
	if fh.Size > h.maxBytes {
		h.rechazar(c, "File too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		internalError(c, "Error al subir documento", err)
		return
	}
	defer f.Close()

	doc, err := h.svc.Subir(c.Request.Context(), dto.SubirDocumentoInput{
		UserEmail:    c.PostForm("user_email"),
		DocumentType: c.PostForm("document_type"),
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Content:      f,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTipoArchivoNoPermitido):
			h.rechazar(c, "Tipo de archivo no permitido")
		case errors.Is(err, service.ErrArchivoMuyGrande):
			h.rechazar(c, "File too large")
		case errors.Is(err, service.ErrTipoDocumentoRequerido):
			c.JSON(http.StatusBadRequest, apierror.New("El tipo de documento es requerido"))
		case errors.Is(err, service.ErrUsuarioNoEncontrado):
			c.JSON(http.StatusNotFound, apierror.New("Usuario no encontrado"))
		default:
			documentUploadsTotal.WithLabelValues("error").Inc()
			internalError(c, "Error al subir documento", err)
		}
		return
	}

	documentUploadsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, apierror.OK(doc, "Documento subido correctamente"))
}

func (h *DocumentosHandler) rechazar(c *gin.Context, detail string) {
	documentUploadsTotal.WithLabelValues("rechazado").Inc()
	log.Warn().Str("request_id", middleware.GetRequestID(c)).Str("motivo", detail).Msg("subida rechazada")
	c.JSON(http.StatusBadRequest, apierror.WithError(msgErrorSubida, detail))
}

// ListarPorEmail returns the user's documents, newest first.
func (h *DocumentosHandler) ListarPorEmail(c *gin.Context) {
	docs, err := h.svc.ListarPorEmail(c.Request.Context(), c.Param("user_email"))
	if err != nil {
		internalError(c, "Error al obtener documentos", err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(docs, ""))
}
