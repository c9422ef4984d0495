// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/nanahoshi/pointbot/internal/domain/types"
)

// ServersHandler handles guild listing requests.
type ServersHandler struct {
	deps Dependencies
}

// NewServersHandler creates a new servers handler.
func NewServersHandler(deps Dependencies) *ServersHandler {
	return &ServersHandler{deps: deps}
}

// HandleGetServers handles GET /api/getservers requests. The reply is the
// full guild list as a JSON array; an empty list is a valid answer while
// the gateway session is still warming up.
func (h *ServersHandler) HandleGetServers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	guilds := h.deps.Guilds()
	if guilds == nil {
		guilds = []types.GuildInfo{}
	}
	writeJSON(w, http.StatusOK, guilds)
}
