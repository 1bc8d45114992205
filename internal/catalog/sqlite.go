package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/foodkaki/makanbot/internal/models"
)

// SQLiteStore implements Store on a SQLite database. The catalog is
// written by external ETL tooling (or the seed command); the pipeline
// only reads from it.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the catalog database at path
// and ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS places (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	map_link TEXT NOT NULL DEFAULT '',
	latitude REAL,
	longitude REAL,
	avg_price REAL
);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE
);

CREATE TABLE IF NOT EXISTS place_tags (
	place_id INTEGER NOT NULL REFERENCES places(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (place_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_place_tags_tag ON place_tags(tag_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return nil
}

// ListTags returns every tag name in the catalog, sorted by name.
func (s *SQLiteStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tags: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.Name); err != nil {
			return nil, fmt.Errorf("%w: scanning tag: %v", ErrUnavailable, err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing tags: %v", ErrUnavailable, err)
	}
	return tags, nil
}

// PlaceIDsForTag returns the set of place ids carrying tagName.
func (s *SQLiteStore) PlaceIDsForTag(ctx context.Context, tagName string) (IDSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.place_id
		FROM place_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.name = ? COLLATE NOCASE`, tagName)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tag %q: %v", ErrUnavailable, tagName, err)
	}
	defer rows.Close()

	ids := IDSet{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning place id: %v", ErrUnavailable, err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: querying tag %q: %v", ErrUnavailable, tagName, err)
	}
	return ids, nil
}

// PlacesByIDs fetches the place records for ids, ordered by id ascending.
func (s *SQLiteStore) PlacesByIDs(ctx context.Context, ids IDSet, limit int) ([]models.Place, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	ordered := make([]int64, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ordered)), ",")
	args := make([]any, 0, len(ordered)+1)
	for _, id := range ordered {
		args = append(args, id)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name, address, map_link,
		       COALESCE(latitude, 0), COALESCE(longitude, 0)
		FROM places WHERE id IN (%s) ORDER BY id LIMIT ?`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching places: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	return scanPlaces(rows)
}

// TagsForPlaces returns the tag names attached to each place id.
func (s *SQLiteStore) TagsForPlaces(ctx context.Context, ids []int64) (map[int64][]string, error) {
	if len(ids) == 0 {
		return map[int64][]string{}, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT pt.place_id, t.name
		FROM place_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.place_id IN (%s)
		ORDER BY pt.place_id, t.name`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching place tags: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make(map[int64][]string, len(ids))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("%w: scanning place tag: %v", ErrUnavailable, err)
		}
		out[id] = append(out[id], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetching place tags: %v", ErrUnavailable, err)
	}
	return out, nil
}

// SearchPlaces runs the supplementary structured filter path: average
// price ceiling and cuisine tag in SQL, distance-from-named-area in Go
// (SQLite has no trig functions).
func (s *SQLiteStore) SearchPlaces(ctx context.Context, f Filter) ([]models.Place, error) {
	if f.Empty() {
		return nil, nil
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	query := `
		SELECT DISTINCT p.id, p.name, p.address, p.map_link,
		       COALESCE(p.latitude, 0), COALESCE(p.longitude, 0)
		FROM places p`
	var clauses []string
	var args []any

	if f.Cuisine != "" {
		query += `
		JOIN place_tags pt ON pt.place_id = p.id
		JOIN tags t ON t.id = pt.tag_id`
		clauses = append(clauses, `t.name = ? COLLATE NOCASE`)
		args = append(args, f.Cuisine)
	}
	if f.MaxPrice > 0 {
		clauses = append(clauses, `p.avg_price IS NOT NULL AND p.avg_price <= ?`)
		args = append(args, f.MaxPrice)
	}
	if len(clauses) > 0 {
		query += "\n\t\tWHERE " + strings.Join(clauses, " AND ")
	}
	query += "\n\t\tORDER BY p.id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: searching places: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	places, err := scanPlaces(rows)
	if err != nil {
		return nil, err
	}

	if f.NearArea != "" {
		places, err = s.filterByDistance(ctx, places, f)
		if err != nil {
			return nil, err
		}
	}
	return places, nil
}

// filterByDistance keeps places within RadiusKm of the centroid of the
// named area's places. When the area is unknown or has no coordinates the
// filter is a no-op rather than an empty result.
func (s *SQLiteStore) filterByDistance(ctx context.Context, places []models.Place, f Filter) ([]models.Place, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT AVG(p.latitude), AVG(p.longitude)
		FROM places p
		JOIN place_tags pt ON pt.place_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.name = ? COLLATE NOCASE AND p.latitude IS NOT NULL`, f.NearArea)

	var lat, lng sql.NullFloat64
	if err := row.Scan(&lat, &lng); err != nil {
		return nil, fmt.Errorf("%w: resolving area centroid: %v", ErrUnavailable, err)
	}
	if !lat.Valid || !lng.Valid {
		return places, nil
	}

	radius := f.RadiusKm
	if radius <= 0 {
		radius = 2.0
	}

	kept := places[:0]
	for _, p := range places {
		if p.Latitude == 0 && p.Longitude == 0 {
			continue
		}
		if haversineKm(lat.Float64, lng.Float64, p.Latitude, p.Longitude) <= radius {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanPlaces(rows *sql.Rows) ([]models.Place, error) {
	var places []models.Place
	for rows.Next() {
		var p models.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.MapLink, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("%w: scanning place: %v", ErrUnavailable, err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading places: %v", ErrUnavailable, err)
	}
	return places, nil
}

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
