package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"seenstudio/internal/apperr"
	applog "seenstudio/internal/log"
)

var codeByStatus = map[int]apperr.Code{
	http.StatusBadRequest:            apperr.CodeValidation,
	http.StatusUnauthorized:          apperr.CodeUnauthorized,
	http.StatusForbidden:             apperr.CodeForbidden,
	http.StatusNotFound:              apperr.CodeNotFound,
	http.StatusMethodNotAllowed:      apperr.CodeNotFound,
	http.StatusConflict:              apperr.CodeConflict,
	http.StatusRequestEntityTooLarge: apperr.CodeValidation,
	http.StatusUnprocessableEntity:   apperr.CodeStateConflict,
	http.StatusTooManyRequests:       apperr.CodeRateLimit,
}

type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

// ErrorHandler renders every error as {"error": {code, message, details?}}.
// 5xx responses carry only the public message; the cause is logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, ok := codeByStatus[fe.Code]
		if !ok {
			code = apperr.CodeInternal
		}
		msg := fe.Message
		if fe.Code >= http.StatusInternalServerError {
			applog.Error(c, "server.error", err, nil)
			msg = apperr.MetadataFor(apperr.CodeInternal).PublicMessage
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": errorBody{Code: code, Message: msg}})
	}

	code := apperr.CodeOf(err)
	meta := apperr.MetadataFor(code)
	body := errorBody{Code: code, Message: meta.PublicMessage}
	if ae := apperr.As(err); ae != nil && meta.HTTPStatus < http.StatusInternalServerError {
		if ae.Message() != "" {
			body.Message = ae.Message()
		}
		if meta.DetailsAllowed {
			body.Details = ae.Details()
		}
	}
	if meta.HTTPStatus >= http.StatusInternalServerError {
		applog.Error(c, "server.error", err, map[string]any{"code": code})
	}
	return c.Status(meta.HTTPStatus).JSON(fiber.Map{"error": body})
}
