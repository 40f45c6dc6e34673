// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/casas/internal/geo"
)

const etagCap = 20

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleSaveMarker appends the JSON request body to the collection.
func (s *ServerContext) HandleSaveMarker(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.Config.Server.BodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Int64("limit", tooLarge.Limit).Msg("Marker body too large")
			writeStatus(w, http.StatusRequestEntityTooLarge)
			return
		}
		log.Warn().Err(err).Msg("Failed to read marker body")
		writeStatus(w, http.StatusBadRequest)
		return
	}

	marker := bytes.TrimSpace(body)
	if !isObjectOrArray(marker) || !json.Valid(marker) {
		log.Warn().Int("bytes", len(body)).Msg("Marker body is not a JSON object or array")
		writeStatus(w, http.StatusBadRequest)
		return
	}

	log.Debug().RawJSON("marker", marker).Msg("Received marker data")

	if err := s.Markers.AppendMarker(r.Context(), marker); err != nil {
		log.Error().Err(err).Msg("Failed to save marker")
		writeStatus(w, http.StatusInternalServerError)
		return
	}

	log.Info().Str("storage", s.Config.Storage.Path).Msg("Marker saved successfully")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Marker saved successfully"})
}

// HandleData serves the whole collection document.
func (s *ServerContext) HandleData(w http.ResponseWriter, r *http.Request) {
	fc, err := s.Markers.GetCollection(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read markers data")
		writeStatus(w, http.StatusInternalServerError)
		return
	}

	body, err := geo.Encode(fc, "")
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode markers data")
		writeStatus(w, http.StatusInternalServerError)
		return
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendUint(buf, xxhash.Sum64(body), 16)
	buf = append(buf, '"')
	etag := string(buf)

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleCasasFile serves the collection, reporting a missing backing file
// as 404 instead of a generic failure.
func (s *ServerContext) HandleCasasFile(w http.ResponseWriter, r *http.Request) {
	fc, err := s.Markers.GetCollection(r.Context())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("storage", s.Config.Storage.Path).Msg("JSON file not found")
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "JSON file not found"})
			return
		}
		log.Error().Err(err).Msg("Error reading the JSON file")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Error reading the JSON file"})
		return
	}

	writeJSON(w, http.StatusOK, fc)
}

// HandleHealth reports liveness.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// writeStatus sends the bare status text, without a trailing newline.
func writeStatus(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, http.StatusText(code))
}

// isObjectOrArray reports whether a trimmed body starts a JSON object or
// array. Bare strings, numbers, booleans and null are not markers.
func isObjectOrArray(body []byte) bool {
	return len(body) > 0 && (body[0] == '{' || body[0] == '[')
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		writeStatus(w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	// Ignoring error as we cannot handle client disconnects
	_, _ = w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
