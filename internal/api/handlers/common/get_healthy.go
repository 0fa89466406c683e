package common

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/chainsig-relay/internal/api"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Health check
// Returns 200 with one line per probe when NEAR RPC and the EVM RPC answer, 521 otherwise.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(StatusNotReady, "Not ready.")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), s.Config.Management.ProbeTimeout)
		defer cancel()

		str, errs := ProbeLiveness(ctx, s.Config)
		if len(errs) > 0 {
			return c.String(StatusNotReady, str)
		}

		return c.String(http.StatusOK, str)
	}
}
