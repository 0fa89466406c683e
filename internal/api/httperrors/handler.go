package httperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/chainsig-relay/internal/util"
)

// FallbackMessage is the body of every 500 produced for an unhandled error.
const FallbackMessage = "Something broke!"

// HTTPErrorHandler is the last resort for errors escaping a handler.
// Unknown routes and methods keep their 404/405 status. Everything else,
// body limit and body parsing failures included, is logged with its stack and
// answered with a plain 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	log := util.LogFromEchoContext(c)

	code := http.StatusInternalServerError
	body := FallbackMessage

	var he *echo.HTTPError
	if errors.As(err, &he) && keepsStatus(he.Code) {
		code = he.Code
		body = http.StatusText(code)

		log.Debug().Err(err).Int("status", code).Msg("HTTP error")
	} else {
		log.Error().Err(err).Str("stack", fmt.Sprintf("%+v", err)).Msg(FallbackMessage)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.String(code, body)
	}

	if writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

func keepsStatus(code int) bool {
	return code == http.StatusNotFound || code == http.StatusMethodNotAllowed
}
