package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roadlab/stats19/internal/models"
)

type AccidentRepository struct {
	pool *pgxpool.Pool
}

func NewAccidentRepository(pool *pgxpool.Pool) *AccidentRepository {
	return &AccidentRepository{pool: pool}
}

const accidentInsert = `
        INSERT INTO accidents (
            accident_index, occurred_at, location, has_location, police_force,
            severity, num_vehicles, num_casualties, day_of_week,
            first_road_class, road_type, speed_limit, junction_detail,
            light_conditions, weather_conditions, surface_conditions,
            urban_or_rural
        ) VALUES (
            $1, to_timestamp($2), ST_SetSRID(ST_MakePoint($3, $4), 4326), $5,
            $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
        )`

func (r *AccidentRepository) BulkCreate(ctx context.Context, accidents []*models.Accident) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, a := range accidents {
		if _, err := tx.Exec(ctx, accidentInsert, accidentArgs(a)...); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *AccidentRepository) Create(ctx context.Context, accident *models.Accident) error {
	_, err := r.pool.Exec(ctx, accidentInsert, accidentArgs(accident)...)
	return err
}

func accidentArgs(a *models.Accident) []interface{} {
	return []interface{}{
		a.AccidentIndex,
		a.Timestamp,
		a.Location.Lon,
		a.Location.Lat,
		a.HasLocation,
		a.PoliceForce,
		a.Severity,
		a.NumVehicles,
		a.NumCasualties,
		a.DayOfWeek,
		a.FirstRoadClass,
		a.RoadType,
		a.SpeedLimit,
		a.JunctionDetail,
		a.LightConditions,
		a.WeatherConditions,
		a.SurfaceConditions,
		a.UrbanOrRural,
	}
}

func (r *AccidentRepository) GetAll(ctx context.Context) ([]*models.Accident, error) {
	query := `
        SELECT
            accident_index, extract(epoch from occurred_at)::bigint,
            ST_X(location::geometry), ST_Y(location::geometry), has_location,
            police_force, severity, num_vehicles, num_casualties, day_of_week,
            first_road_class, road_type, speed_limit, junction_detail,
            light_conditions, weather_conditions, surface_conditions,
            urban_or_rural
        FROM accidents`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accidents []*models.Accident
	for rows.Next() {
		var lon, lat float64
		a := &models.Accident{}
		err := rows.Scan(
			&a.AccidentIndex,
			&a.Timestamp,
			&lon,
			&lat,
			&a.HasLocation,
			&a.PoliceForce,
			&a.Severity,
			&a.NumVehicles,
			&a.NumCasualties,
			&a.DayOfWeek,
			&a.FirstRoadClass,
			&a.RoadType,
			&a.SpeedLimit,
			&a.JunctionDetail,
			&a.LightConditions,
			&a.WeatherConditions,
			&a.SurfaceConditions,
			&a.UrbanOrRural,
		)
		if err != nil {
			return nil, err
		}
		a.Location = models.Location{Lon: lon, Lat: lat}
		accidents = append(accidents, a)
	}
	return accidents, rows.Err()
}

func (r *AccidentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM accidents").Scan(&count)
	return count, err
}

func (r *AccidentRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE accidents CASCADE")
	return err
}
