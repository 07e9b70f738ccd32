package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/careguardpe-bit/careguard-backend/internal/apierror"
	"github.com/careguardpe-bit/careguard-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

func init() {
	// Report the msg tag as the field name so a failed rule carries its
	// client-facing message.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
		return f.Name
	})
}

// bindAndValidate binds the JSON body and runs go-playground/validator tags.
// Returns false and writes a 400 with the first failing field's message;
// the caller should return immediately.
func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			c.JSON(http.StatusBadRequest, apierror.New(verrs[0].Field()))
			return false
		}
		c.JSON(http.StatusBadRequest, apierror.New("Datos inválidos"))
		return false
	}
	return true
}

// internalError logs err against the request id and answers with a generic 500.
func internalError(c *gin.Context, msg string, err error) {
	requestID := middleware.GetRequestID(c)
	log.Error().
		Err(err).
		Str("request_id", requestID).
		Str("path", c.FullPath()).
		Msg(msg)
	c.JSON(http.StatusInternalServerError, apierror.Internal(msg, requestID))
}
