package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/samdwyer/overmap/internal/mapio"
	"github.com/samdwyer/overmap/internal/world"
)

const mapsSchema = `
CREATE TABLE IF NOT EXISTS maps (
	map_id      TEXT PRIMARY KEY,
	seed        BIGINT NOT NULL,
	format      TEXT NOT NULL,
	fingerprint BIGINT NOT NULL,
	payload     BYTEA NOT NULL,
	created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);`

// PostgresStore keeps maps as rows in a maps table, one per map ID.
type PostgresStore struct {
	db         *sql.DB
	serializer *mapio.Serializer
}

// NewPostgresStore connects, verifies the connection, and creates the
// schema if it does not exist yet.
func NewPostgresStore(ctx context.Context, dsn string, settings mapio.Settings) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, mapsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initialize schema: %w", err)
	}
	return &PostgresStore{db: db, serializer: mapio.NewSerializer(settings)}, nil
}

// SaveMap upserts the map row. The update is skipped when the stored
// fingerprint already matches, leaving created_at and updated_at alone.
func (s *PostgresStore) SaveMap(ctx context.Context, m *world.MapData, format Format) error {
	if m == nil {
		return mapio.ErrNilMap
	}
	if m.MapID == "" {
		return ErrNoMapID
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}

	payload, err := encodeMap(s.serializer, m, format)
	if err != nil {
		return err
	}
	fp, err := mapio.Fingerprint(m)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO maps (map_id, seed, format, fingerprint, payload)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (map_id)
	DO UPDATE SET
		seed = $2, format = $3, fingerprint = $4, payload = $5,
		updated_at = NOW()
	WHERE maps.fingerprint <> $4`

	if _, err := s.db.ExecContext(ctx, query, m.MapID, m.Seed, string(format), int64(fp), payload); err != nil {
		return fmt.Errorf("store: save map %s: %w", m.MapID, err)
	}
	return nil
}

// LoadMap reads one map row and decodes it per its stored format.
func (s *PostgresStore) LoadMap(ctx context.Context, id string) (*world.MapData, error) {
	var (
		formatName string
		payload    []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT format, payload FROM maps WHERE map_id = $1`, id).Scan(&formatName, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load map %s: %w", id, err)
	}

	format, err := ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	return decodeMap(s.serializer, payload, format)
}

// ListMaps describes every stored map, oldest first.
func (s *PostgresStore) ListMaps(ctx context.Context) ([]MapInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT map_id, seed, format, fingerprint, length(payload), created_at
		 FROM maps ORDER BY created_at, map_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list maps: %w", err)
	}
	defer rows.Close()

	infos := []MapInfo{}
	for rows.Next() {
		var (
			info       MapInfo
			formatName string
			fp         int64
		)
		if err := rows.Scan(&info.MapID, &info.Seed, &formatName, &fp, &info.Size, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("store: scan map row: %w", err)
		}
		info.Format = Format(formatName)
		info.Fingerprint = uint64(fp)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list maps: %w", err)
	}
	return infos, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error { return s.db.Close() }
