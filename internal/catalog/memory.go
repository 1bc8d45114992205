package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/foodkaki/makanbot/internal/models"
)

// MemoryStore implements Store in memory. It backs pipeline tests and
// small fixture catalogs without touching disk.
type MemoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	places    map[int64]models.Place
	placeTags map[int64][]string
	avgPrice  map[int64]float64
	failAll   bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:    1,
		places:    make(map[int64]models.Place),
		placeTags: make(map[int64][]string),
		avgPrice:  make(map[int64]float64),
	}
}

// AddPlace inserts a place with its tags and returns the assigned id.
func (m *MemoryStore) AddPlace(p models.Place, tags ...string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.nextID
	m.nextID++
	m.places[p.ID] = p
	m.placeTags[p.ID] = append([]string(nil), tags...)
	return p.ID
}

// SetAvgPrice records an average price for a place (supplementary filter).
func (m *MemoryStore) SetAvgPrice(id int64, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.avgPrice[id] = price
}

// Fail makes every subsequent call return ErrUnavailable, simulating a
// store outage.
func (m *MemoryStore) Fail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = true
}

func (m *MemoryStore) check() error {
	if m.failAll {
		return ErrUnavailable
	}
	return nil
}

// ListTags returns the deduplicated, sorted tag names across all places.
func (m *MemoryStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	for _, tags := range m.placeTags {
		for _, t := range tags {
			seen[strings.ToLower(t)] = t
		}
	}
	names := make([]string, 0, len(seen))
	for _, t := range seen {
		names = append(names, t)
	}
	sort.Strings(names)

	out := make([]models.Tag, len(names))
	for i, n := range names {
		out[i] = models.Tag{Name: n}
	}
	return out, nil
}

// PlaceIDsForTag returns ids of places carrying tagName (case-insensitive).
func (m *MemoryStore) PlaceIDsForTag(ctx context.Context, tagName string) (IDSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	ids := IDSet{}
	for id, tags := range m.placeTags {
		for _, t := range tags {
			if strings.EqualFold(t, tagName) {
				ids[id] = struct{}{}
				break
			}
		}
	}
	return ids, nil
}

// PlacesByIDs returns places for ids ordered by id ascending, capped at limit.
func (m *MemoryStore) PlacesByIDs(ctx context.Context, ids IDSet, limit int) ([]models.Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	ordered := make([]int64, 0, len(ids))
	for id := range ids {
		if _, ok := m.places[id]; ok {
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]models.Place, 0, len(ordered))
	for _, id := range ordered {
		out = append(out, m.places[id])
	}
	return out, nil
}

// TagsForPlaces returns the tags attached to each given place id.
func (m *MemoryStore) TagsForPlaces(ctx context.Context, ids []int64) (map[int64][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	out := make(map[int64][]string, len(ids))
	for _, id := range ids {
		if tags, ok := m.placeTags[id]; ok {
			sorted := append([]string(nil), tags...)
			sort.Strings(sorted)
			out[id] = sorted
		}
	}
	return out, nil
}

// SearchPlaces applies the supplementary structured filter in memory.
func (m *MemoryStore) SearchPlaces(ctx context.Context, f Filter) ([]models.Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	if f.Empty() {
		return nil, nil
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var centroidLat, centroidLng float64
	var haveCentroid bool
	if f.NearArea != "" {
		var n int
		for id, tags := range m.placeTags {
			p := m.places[id]
			if p.Latitude == 0 && p.Longitude == 0 {
				continue
			}
			for _, t := range tags {
				if strings.EqualFold(t, f.NearArea) {
					centroidLat += p.Latitude
					centroidLng += p.Longitude
					n++
					break
				}
			}
		}
		if n > 0 {
			centroidLat /= float64(n)
			centroidLng /= float64(n)
			haveCentroid = true
		}
	}
	radius := f.RadiusKm
	if radius <= 0 {
		radius = 2.0
	}

	ordered := make([]int64, 0, len(m.places))
	for id := range m.places {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var out []models.Place
	for _, id := range ordered {
		if len(out) >= limit {
			break
		}
		p := m.places[id]

		if f.Cuisine != "" && !m.hasTag(id, f.Cuisine) {
			continue
		}
		if f.MaxPrice > 0 {
			price, ok := m.avgPrice[id]
			if !ok || price > f.MaxPrice {
				continue
			}
		}
		if haveCentroid {
			if p.Latitude == 0 && p.Longitude == 0 {
				continue
			}
			if haversineKm(centroidLat, centroidLng, p.Latitude, p.Longitude) > radius {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryStore) hasTag(id int64, name string) bool {
	for _, t := range m.placeTags[id] {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
