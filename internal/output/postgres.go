package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roadlab/stats19/internal/models"
	"github.com/roadlab/stats19/internal/repositories"
	postgresrepo "github.com/roadlab/stats19/internal/repositories/postgres"
	"github.com/roadlab/stats19/internal/spatial"
)

// PostgresOutput is the sink that lands records in Postgres via the pgx
// repositories. Topics map to tables.
type PostgresOutput struct {
	pool      *pgxpool.Pool
	accidents repositories.AccidentRepository
	hotspots  repositories.HotspotRepository
}

func NewPostgresOutput(config *models.DatabaseConfig) (*PostgresOutput, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.User, config.Password, config.Host, config.Port, config.DBName, config.SSLMode,
	)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &PostgresOutput{
		pool:      pool,
		accidents: postgresrepo.NewAccidentRepository(pool),
		hotspots:  postgresrepo.NewHotspotRepository(pool),
	}, nil
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	ctx := context.Background()

	switch topic {
	case "accidents":
		var a models.Accident
		if err := json.Unmarshal(msg, &a); err != nil {
			return err
		}
		if err := p.accidents.Create(ctx, &a); err != nil {
			return fmt.Errorf("failed to insert accident %s: %w", a.AccidentIndex, err)
		}
	case "hotspots":
		var h spatial.Hotspot
		if err := json.Unmarshal(msg, &h); err != nil {
			return err
		}
		if err := p.hotspots.BulkCreate(ctx, []spatial.Hotspot{h}); err != nil {
			return fmt.Errorf("failed to insert hotspot %s: %w", h.ID, err)
		}
	default:
		return fmt.Errorf("no table mapped for topic %s", topic)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	p.pool.Close()
	return nil
}
