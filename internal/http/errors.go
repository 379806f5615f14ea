package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"cashtrackr/internal/apperr"
)

var errMalformedBody = apperr.Validation("Datos no válidos")

type fieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// respondError is the only place errors become HTTP responses.
func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		h.logger.WithError(err).
			WithField("request_id", c.GetString(requestIDKey)).
			WithField("path", c.FullPath()).
			Error("request failed")
	}
	c.AbortWithStatusJSON(appErr.Kind.Status(), gin.H{"error": appErr.Message})
}

func respondInvalid(c *gin.Context, errs []fieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": errs})
}

// bindJSON decodes the body into req and validates it. On failure it writes
// the response and returns false.
func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondInvalid(c, fieldErrors(req, verrs))
		return false
	}
	h.respondError(c, errMalformedBody)
	return false
}

// fieldErrors reports one entry per failing field, named after its json tag
// and carrying the message from its msg tag.
func fieldErrors(req any, verrs validator.ValidationErrors) []fieldError {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make([]fieldError, 0, len(verrs))
	seen := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		name, msg := fe.Field(), fe.Error()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if tag := strings.Split(sf.Tag.Get("json"), ",")[0]; tag != "" {
				name = tag
			}
			if m := sf.Tag.Get("msg"); m != "" {
				msg = m
			}
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, fieldError{Field: name, Msg: msg})
	}
	return out
}
