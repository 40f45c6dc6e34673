// Package markers implements the append-only marker collection.
package markers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/casas/internal/geo"
	"github.com/woozymasta/casas/internal/metrics"
	"github.com/woozymasta/casas/internal/storage"
)

// Service appends markers to and reads the persisted collection.
// Every operation holds one lock for its whole load/save sequence, so
// concurrent appends never lose updates.
type Service struct {
	store storage.Store
	mu    sync.Mutex
}

// NewService returns a service over store.
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// AppendMarker loads the collection, appends marker and saves the whole
// document back. The marker is stored as given, without validation.
func (s *Service) AppendMarker(ctx context.Context, marker json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fc, err := s.store.Load()
	if err != nil {
		metrics.StorageErrors.WithLabelValues("load", storage.KindOf(err)).Inc()
		return err
	}

	fc.Append(marker)

	if err := s.store.Save(fc); err != nil {
		metrics.StorageErrors.WithLabelValues("save", storage.KindOf(err)).Inc()
		return err
	}

	metrics.MarkersAppended.Inc()
	metrics.MarkersStored.Set(float64(fc.Len()))

	log.Debug().
		Int("markers", fc.Len()).
		Msg("Marker appended to collection")

	return nil
}

// GetCollection returns the persisted document as stored.
func (s *Service) GetCollection(ctx context.Context) (geo.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return geo.FeatureCollection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fc, err := s.store.Load()
	if err != nil {
		metrics.StorageErrors.WithLabelValues("load", storage.KindOf(err)).Inc()
		return geo.FeatureCollection{}, err
	}

	metrics.MarkersStored.Set(float64(fc.Len()))
	return fc, nil
}
