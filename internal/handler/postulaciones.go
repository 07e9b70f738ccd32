package handler

import (
	"errors"
	"net/http"

	"github.com/careguardpe-bit/careguard-backend/internal/apierror"
	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type PostulacionesHandler struct{ svc service.PostulacionService }

func NewPostulacionesHandler(svc service.PostulacionService) *PostulacionesHandler {
	return &PostulacionesHandler{svc: svc}
}

// Crear godoc
// @Summary  Registra una postulación y genera su número de referencia
// @Tags     postulaciones
// @Accept   json
// @Produce  json
// @Param    body body dto.CrearPostulacionRequest true "Postulación"
// @Success  200 {object} apierror.Response
// @Failure  404 {object} apierror.Response
// @Router   /api/submissions [post]
func (h *PostulacionesHandler) Crear(c *gin.Context) {
	var req dto.CrearPostulacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUsuarioNoEncontrado) {
			c.JSON(http.StatusNotFound, apierror.New("Usuario no encontrado"))
			return
		}
		internalError(c, "Error al enviar postulación", err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(p, "Postulación enviada correctamente"))
}

func (h *PostulacionesHandler) ListarPorEmail(c *gin.Context) {
	list, err := h.svc.ListarPorEmail(c.Request.Context(), c.Param("user_email"))
	if err != nil {
		internalError(c, "Error al obtener postulaciones", err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(list, ""))
}
