package server

import (
	"net/http"

	"github.com/woozymasta/casas/internal/metrics"
)

// Handler builds the routed and wrapped HTTP handler.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /save-marker", s.HandleSaveMarker)
	mux.HandleFunc("GET /data", s.HandleData)
	mux.HandleFunc("POST /casas.json", s.HandleCasasFile)
	mux.HandleFunc("GET /healthz", s.HandleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return RequestLogger(CORS(s.Config.CORS, mux))
}
