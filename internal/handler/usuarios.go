package handler

import (
	"errors"
	"net/http"

	"github.com/careguardpe-bit/careguard-backend/internal/apierror"
	"github.com/careguardpe-bit/careguard-backend/internal/dto"
	"github.com/careguardpe-bit/careguard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type UsuariosHandler struct{ svc service.UsuarioService }

func NewUsuariosHandler(svc service.UsuarioService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// Guardar godoc
// @Summary  Crea o actualiza el perfil de un postulante (por email)
// @Tags     usuarios
// @Accept   json
// @Produce  json
// @Param    body body dto.GuardarUsuarioRequest true "Perfil"
// @Success  200 {object} apierror.Response
// @Failure  400 {object} apierror.Response
// @Failure  404 {object} apierror.Response
// @Router   /api/users [post]
func (h *UsuariosHandler) Guardar(c *gin.Context) {
	var req dto.GuardarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Guardar(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrPaisNoEncontrado) {
			c.JSON(http.StatusNotFound, apierror.New("País no encontrado"))
			return
		}
		internalError(c, "Error al guardar usuario", err)
		return
	}
	msg := "Usuario actualizado"
	if res.Creado {
		msg = "Usuario creado"
	}
	c.JSON(http.StatusOK, apierror.OK(res.Usuario, msg))
}

// ObtenerPorEmail godoc
// @Summary  Obtiene un postulante con el nombre de su país
// @Tags     usuarios
// @Produce  json
// @Param    email path string true "Email"
// @Success  200 {object} apierror.Response
// @Failure  404 {object} apierror.Response
// @Router   /api/users/{email} [get]
func (h *UsuariosHandler) ObtenerPorEmail(c *gin.Context) {
	u, err := h.svc.ObtenerPorEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, service.ErrUsuarioNoEncontrado) {
			c.JSON(http.StatusNotFound, apierror.New("Usuario no encontrado"))
			return
		}
		internalError(c, "Error al obtener usuario", err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(u, ""))
}
