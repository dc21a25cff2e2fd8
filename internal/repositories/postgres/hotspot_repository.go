package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roadlab/stats19/internal/models"
	"github.com/roadlab/stats19/internal/spatial"
)

type HotspotRepository struct {
	pool *pgxpool.Pool
}

func NewHotspotRepository(pool *pgxpool.Pool) *HotspotRepository {
	return &HotspotRepository{pool: pool}
}

const hotspotInsert = `
        INSERT INTO hotspots (
            id, centroid, radius_km, accident_count, fatal, serious, slight,
            score, cell_count
        ) VALUES (
            $1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4, $5, $6, $7, $8,
            $9, $10
        )`

func (r *HotspotRepository) BulkCreate(ctx context.Context, hotspots []spatial.Hotspot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := range hotspots {
		if _, err := tx.Exec(ctx, hotspotInsert, hotspotArgs(&hotspots[i])...); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func hotspotArgs(h *spatial.Hotspot) []interface{} {
	return []interface{}{
		h.ID,
		h.Centroid.Lon,
		h.Centroid.Lat,
		h.RadiusKm,
		h.Count,
		h.Fatal,
		h.Serious,
		h.Slight,
		h.Score,
		h.CellCount,
	}
}

func (r *HotspotRepository) GetAll(ctx context.Context) ([]spatial.Hotspot, error) {
	query := `
        SELECT
            id, ST_X(centroid::geometry), ST_Y(centroid::geometry), radius_km,
            accident_count, fatal, serious, slight, score, cell_count
        FROM hotspots
        ORDER BY score DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hotspots []spatial.Hotspot
	for rows.Next() {
		var h spatial.Hotspot
		var lon, lat float64
		err := rows.Scan(
			&h.ID,
			&lon,
			&lat,
			&h.RadiusKm,
			&h.Count,
			&h.Fatal,
			&h.Serious,
			&h.Slight,
			&h.Score,
			&h.CellCount,
		)
		if err != nil {
			return nil, err
		}
		h.Centroid = models.Location{Lon: lon, Lat: lat}
		hotspots = append(hotspots, h)
	}
	return hotspots, rows.Err()
}

func (r *HotspotRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM hotspots").Scan(&count)
	return count, err
}

func (r *HotspotRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE hotspots")
	return err
}
