package util

import (
	"github.com/go-openapi/strfmt"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type runtimeValidatable interface {
	Validate(formats strfmt.Registry) error
}

// ValidateAndReturn validates the response payload before writing it as JSON.
// An invalid payload is returned as an error and ends up in the HTTP error handler.
func ValidateAndReturn(c echo.Context, code int, v runtimeValidatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		LogFromEchoContext(c).Error().Err(err).Msg("Response payload validation failed")
		return errors.Wrap(err, "invalid response payload")
	}

	return c.JSON(code, v)
}
