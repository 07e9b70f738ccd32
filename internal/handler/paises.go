package handler

import (
	"errors"
	"net/http"

	"github.com/careguardpe-bit/careguard-backend/internal/apierror"
	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type PaisesHandler struct{ svc service.PaisService }

func NewPaisesHandler(svc service.PaisService) *PaisesHandler {
	return &PaisesHandler{svc: svc}
}

func (h *PaisesHandler) Listar(c *gin.Context) {
	paises, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		internalError(c, "Error al obtener países", err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(paises, ""))
}

// Seleccionar confirms the chosen country exists. Nothing is persisted.
func (h *PaisesHandler) Seleccionar(c *gin.Context) {
	var req dto.SeleccionarPaisRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID() <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("El país es requerido"))
		return
	}
	p, err := h.svc.Seleccionar(c.Request.Context(), req.ID())
	if err != nil {
		if errors.Is(err, service.ErrPaisNoEncontrado) {
			c.JSON(http.StatusNotFound, apierror.New("País no encontrado"))
			return
		}
		internalError(c, "Error al seleccionar país", err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(p, "País seleccionado correctamente"))
}
