package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

type BodyParserConfig struct {
	Skipper echoMiddleware.Skipper
}

// BodyParserWithConfig reads JSON and url-encoded request bodies and fails the
// request with a plain error if they do not parse. The body stays readable for
// the next handler. JSON bodies must be an object or an array.
func BodyParserWithConfig(config BodyParserConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = echoMiddleware.DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			ctype := req.Header.Get(echo.HeaderContentType)
			isJSON := strings.HasPrefix(ctype, echo.MIMEApplicationJSON)
			isForm := strings.HasPrefix(ctype, echo.MIMEApplicationForm)
			if !isJSON && !isForm {
				return next(c)
			}

			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return errors.Wrap(err, "failed to read request body")
			}
			req.Body = io.NopCloser(bytes.NewReader(raw))

			if len(bytes.TrimSpace(raw)) == 0 {
				return next(c)
			}

			if isJSON {
				if err := parseJSON(raw); err != nil {
					return err
				}
			} else if _, err := url.ParseQuery(string(raw)); err != nil {
				return errors.Wrap(err, "malformed url-encoded request body")
			}

			return next(c)
		}
	}
}

func parseJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return errors.New("JSON request body must be an object or an array")
	}

	var v json.RawMessage
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return errors.Wrap(err, "malformed JSON request body")
	}

	return nil
}
