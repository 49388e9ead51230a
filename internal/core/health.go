package core

import (
	"net/http"
	"time"
)

// healthResponse is the JSON response body for the health check endpoint.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HandleHealth reports process liveness. The service has no critical remote
// dependencies to probe (the flat-file stores are created lazily and the
// payment processor is reached only on demand), so this is a static check.
//
// Public, mounted at GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
