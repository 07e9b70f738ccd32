package service

import "errors"

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrUsuarioNoEncontrado = errors.New("usuario no encontrado")
	ErrPaisNoEncontrado    = errors.New("país no encontrado")

	ErrTipoArchivoNoPermitido = errors.New("tipo de archivo no permitido")
	ErrArchivoMuyGrande       = errors.New("archivo demasiado grande")
	ErrTipoDocumentoRequerido = errors.New("el tipo de documento es requerido")

	// ErrReferenciaAgotada means every generated reference number collided.
	ErrReferenciaAgotada = errors.New("no se pudo generar un número de referencia único")
)
