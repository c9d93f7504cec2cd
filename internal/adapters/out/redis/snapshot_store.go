package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

const DefaultSnapshotTTL = 24 * time.Hour

var _ ports.LocationSnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps one hash per company, one field per rider.
// Saving refreshes the hash TTL, so a company nobody asks about expires as a whole.
type SnapshotStore struct {
	client *Client
	ttl    time.Duration
}

type snapshotEntry struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func NewSnapshotStore(client *Client, ttl time.Duration) (*SnapshotStore, error) {
	if client == nil || client.store == nil {
		return nil, ErrClientNotInitialized
	}
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotStore{client: client, ttl: ttl}, nil
}

func (s *SnapshotStore) Save(ctx context.Context, companyID string, locations []ports.RiderLocation) error {
	if len(locations) == 0 {
		return nil
	}

	values := make([]any, 0, len(locations)*2)
	for _, loc := range locations {
		payload, err := json.Marshal(snapshotEntry{
			Latitude:    loc.Location.Latitude(),
			Longitude:   loc.Location.Longitude(),
			Source:      string(loc.Location.Provenance()),
			LastUpdated: loc.LastUpdated.UTC(),
		})
		if err != nil {
			return fmt.Errorf("marshal rider location %s: %w", loc.RiderNumber, err)
		}
		values = append(values, loc.RiderNumber, string(payload))
	}

	key := s.client.RiderLocationsKey(companyID)
	if err := s.client.store.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("store rider locations: %w", err)
	}
	if err := s.client.store.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("expire rider locations: %w", err)
	}
	return nil
}

// Load returns the stored riders in no particular order. A missing hash yields an empty slice.
func (s *SnapshotStore) Load(ctx context.Context, companyID string) ([]ports.RiderLocation, error) {
	fields, err := s.client.store.HGetAll(ctx, s.client.RiderLocationsKey(companyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load rider locations: %w", err)
	}

	result := make([]ports.RiderLocation, 0, len(fields))
	for rider, raw := range fields {
		var entry snapshotEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("decode rider location %s: %w", rider, err)
		}
		loc, err := entry.location()
		if err != nil {
			return nil, fmt.Errorf("decode rider location %s: %w", rider, err)
		}
		result = append(result, ports.RiderLocation{
			RiderNumber: rider,
			Location:    loc,
			LastUpdated: entry.LastUpdated,
		})
	}
	return result, nil
}

func (e snapshotEntry) location() (kernel.Location, error) {
	if kernel.Provenance(e.Source) == kernel.Simulated {
		return kernel.NewSimulatedLocation(e.Latitude, e.Longitude)
	}
	return kernel.NewLocation(e.Latitude, e.Longitude)
}

// NopSnapshotStore is used when Redis is not configured: nothing is kept.
type NopSnapshotStore struct{}

var _ ports.LocationSnapshotStore = NopSnapshotStore{}

func (NopSnapshotStore) Save(context.Context, string, []ports.RiderLocation) error {
	return nil
}

func (NopSnapshotStore) Load(context.Context, string) ([]ports.RiderLocation, error) {
	return []ports.RiderLocation{}, nil
}
