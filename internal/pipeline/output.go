package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/roadlab/stats19/internal/cloudwriter"
	"github.com/roadlab/stats19/internal/models"
	"github.com/roadlab/stats19/internal/output"
	"github.com/roadlab/stats19/internal/pipeline/producers"
	"github.com/roadlab/stats19/internal/spatial"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// OutputDestination is the sink contract every writer implements. Messages
// are JSON-encoded records keyed by topic.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// ForConfig selects the sink the way the config asks for it.
func ForConfig(cfg *models.Config) (OutputDestination, error) {
	if cfg.KafkaEnabled {
		return producers.NewSaramaProducer(cfg)
	}
	if cfg.OutputFormat == "postgres" {
		return output.NewPostgresOutput(&cfg.Database)
	}
	if cfg.OutputPath != "" {
		switch cfg.OutputFormat {
		case "parquet":
			return NewParquetOutput(cfg)
		case "json":
			return NewJSONOutput(cfg.OutputPath, cfg.OutputFolder), nil
		case "csv", "":
			return NewCSVOutput(cfg.OutputPath, cfg.OutputFolder), nil
		default:
			return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
		}
	}
	return &ConsoleOutput{}, nil
}

// partitionPath derives a hive-style partition from the record's timestamp.
// Records without one (hotspots) land in a flat directory.
func partitionPath(msg []byte) string {
	var event struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &event); err != nil || event.Timestamp == 0 {
		return ""
	}
	t := time.Unix(event.Timestamp, 0).UTC()
	return fmt.Sprintf("year=%d/month=%02d", t.Year(), t.Month())
}

type CSVOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
	writers  map[string]*csv.Writer
	fallback *JSONOutput
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
		writers:  make(map[string]*csv.Writer),
		fallback: NewJSONOutput(basePath, folder),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	if topic != TopicAccidents {
		// only accident records have a canonical CSV layout
		return c.fallback.WriteMessage(topic, msg)
	}

	var accident models.Accident
	if err := json.Unmarshal(msg, &accident); err != nil {
		return err
	}

	fullPath := filepath.Join(c.basePath, c.folder, topic, partitionPath(msg))
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	w, ok := c.writers[fullPath]
	if !ok {
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		c.files[fullPath] = file
		w = csv.NewWriter(file)
		c.writers[fullPath] = w
		if err := w.Write(models.CanonicalColumns); err != nil {
			return err
		}
	}

	if err := w.Write(accident.CSVRow()); err != nil {
		return err
	}
	return nil
}

func (c *CSVOutput) Close() error {
	var lastErr error
	for path, w := range c.writers {
		w.Flush()
		if err := w.Error(); err != nil {
			lastErr = err
		}
		if err := c.files[path].Close(); err != nil {
			lastErr = err
		}
	}
	if err := c.fallback.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}

type JSONOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	fullPath := filepath.Join(j.basePath, j.folder, topic, partitionPath(msg))
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	file, ok := j.files[fullPath]
	if !ok {
		var err error
		file, err = os.OpenFile(filepath.Join(fullPath, "data.json"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		j.files[fullPath] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	var lastErr error
	for _, file := range j.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

type ParquetOutput struct {
	basePath           string
	folder             string
	mu                 sync.Mutex
	writers            map[string]*writer.ParquetWriter
	files              map[string]source.ParquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetOutput(cfg *models.Config) (*ParquetOutput, error) {
	p := &ParquetOutput{
		basePath: cfg.OutputPath,
		folder:   cfg.OutputFolder,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
	}

	if cfg.OutputDestination == "s3" {
		factory, err := cloudwriter.NewS3WriterFactory(cfg.CloudStorage.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		p.cloudWriterFactory = factory
		p.cloudBucketName = cfg.CloudStorage.BucketName
	} else if cfg.OutputDestination != "" && cfg.OutputDestination != "local" {
		return nil, fmt.Errorf("unsupported output destination: %s", cfg.OutputDestination)
	}

	return p, nil
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	partition := partitionPath(msg)
	fullPath := filepath.Join(p.basePath, p.folder, topic, partition)

	p.mu.Lock()
	pw, ok := p.writers[fullPath]
	if !ok {
		var err error
		pw, err = p.createNewWriter(fullPath, topic)
		if err != nil {
			p.mu.Unlock()
			return fmt.Errorf("failed to create new writer: %w", err)
		}
	}
	p.mu.Unlock()

	row, err := decodeRow(topic, msg)
	if err != nil {
		return err
	}
	if err := pw.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// decodeRow turns the JSON message back into the typed row the schema
// handler was derived from.
func decodeRow(topic string, msg []byte) (interface{}, error) {
	switch topic {
	case TopicAccidents:
		var a models.Accident
		if err := json.Unmarshal(msg, &a); err != nil {
			return nil, err
		}
		return a, nil
	case TopicHotspots:
		var h spatial.Hotspot
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}

func (p *ParquetOutput) createNewWriter(fullPath, topic string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error
	if p.cloudWriterFactory != nil {
		objectPath := filepath.Join(fullPath, "data.parquet")
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cw)
	} else {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	sc, err := GetSchema(topic)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, nil, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.SchemaHandler = sc

	p.writers[fullPath] = pw
	p.files[fullPath] = fw
	return pw, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for key, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			log.Printf("Error closing writer for %s: %v", key, err)
		}
		if f, ok := p.files[key]; ok {
			if err := f.Close(); err != nil {
				lastErr = err
				log.Printf("Error closing file for %s: %v", key, err)
			}
		}
	}
	return lastErr
}

// CloudParquetFile adapts a CloudWriter to the parquet source interface.
// Cloud objects are write-only streams, so reads and seeks from the end are
// not supported.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cw cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cw}
}

func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error)   { return c, nil }
func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) { return c, nil }

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	return c.cloudWriter.Write(p)
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

// ConsoleOutput prints records to stdout, topic-prefixed.
type ConsoleOutput struct{}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	_, err := fmt.Fprintf(os.Stdout, "[%s] %s\n", topic, string(msg))
	if err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// WriteAccidents pushes a batch of records through any sink.
func WriteAccidents(dest OutputDestination, accidents []*models.Accident) error {
	for _, a := range accidents {
		msg, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to serialise accident %s: %w", a.AccidentIndex, err)
		}
		if err := dest.WriteMessage(TopicAccidents, msg); err != nil {
			return fmt.Errorf("failed to write accident %s: %w", a.AccidentIndex, err)
		}
	}
	return nil
}

// WriteHotspots pushes a hotspot report through any sink.
func WriteHotspots(dest OutputDestination, hotspots []spatial.Hotspot) error {
	for i := range hotspots {
		msg, err := json.Marshal(&hotspots[i])
		if err != nil {
			return fmt.Errorf("failed to serialise hotspot %s: %w", hotspots[i].ID, err)
		}
		if err := dest.WriteMessage(TopicHotspots, msg); err != nil {
			return fmt.Errorf("failed to write hotspot %s: %w", hotspots[i].ID, err)
		}
	}
	return nil
}
