package handlers

import (
	"github/chapool/chainsig-relay/internal/api"
	"github/chapool/chainsig-relay/internal/api/handlers/common"
	"github/chapool/chainsig-relay/internal/api/handlers/evm"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = append(s.Router.Routes,
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		common.GetVersionRoute(s),
		evm.GetExecuteEVMTransactionRoute(s),
	)
}
