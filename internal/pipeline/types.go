package pipeline

import (
	"fmt"

	"github.com/roadlab/stats19/internal/models"
	"github.com/roadlab/stats19/internal/spatial"
	"github.com/xitongsys/parquet-go/schema"
)

// Topics the pipeline writes. Every sink keys its files, tables or Kafka
// topics off these names.
const (
	TopicAccidents = "accidents"
	TopicHotspots  = "hotspots"
)

// GetSchema returns the parquet schema handler for a topic.
func GetSchema(topic string) (*schema.SchemaHandler, error) {
	switch topic {
	case TopicAccidents:
		return schema.NewSchemaHandlerFromStruct(new(models.Accident))
	case TopicHotspots:
		return schema.NewSchemaHandlerFromStruct(new(spatial.Hotspot))
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}
