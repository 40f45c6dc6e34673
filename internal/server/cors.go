package server

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/casas/internal/config"
)

// CORS wraps next with the configured single-origin policy.
func CORS(cfg config.CORS, next http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:       []string{cfg.Origin},
		AllowedMethods:       cfg.Methods,
		AllowCredentials:     cfg.Credentials,
		OptionsSuccessStatus: cfg.OptionsStatus,
	}

	if zerolog.GlobalLevel() <= zerolog.TraceLevel {
		opts.Debug = true
		opts.Logger = &log.Logger
	}

	return cors.New(opts).Handler(next)
}
