package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/chainsig-relay/internal/api"
)

// StatusNotReady is answered by the probe endpoints while a check fails.
const StatusNotReady = 521

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness check
// This endpoint returns 200 when our Service is ready to serve traffic (i.e. all components are initialized).
// Note that it does not reach out to NEAR or the EVM RPC, see /-/healthy for that.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(StatusNotReady, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
