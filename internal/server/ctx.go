package server

import (
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/casas/internal/config"
	"github.com/woozymasta/casas/internal/markers"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config  *config.Config
	Markers *markers.Service
}

// NewServerContext wires the handlers to the marker service.
func NewServerContext(cfg *config.Config, svc *markers.Service) *ServerContext {
	log.Info().
		Str("storage", cfg.Storage.Path).
		Str("cors_origin", cfg.CORS.Origin).
		Int64("body_limit", cfg.Server.BodyLimit).
		Msg("Server context initialized")

	return &ServerContext{
		Config:  cfg,
		Markers: svc,
	}
}
