package dataset

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/roadlab/stats19/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// ConcatPlan describes a pending merge of parquet part files.
type ConcatPlan struct {
	Parts      []string
	TotalBytes int64
	FreeBytes  int64
	LowSpace   bool
}

// batch size for streaming rows between reader and writer
const concatBatchSize = 4096

// PlanConcat lists the .parquet part files in dir (sorted by name), sums
// their sizes and checks free space on the output filesystem. LowSpace is
// set when free space is under half the combined part size, mirroring the
// safety margin a copy-then-delete merge needs.
func PlanConcat(dir, outPath string) (*ConcatPlan, error) {
	parts, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, err
	}
	sort.Strings(parts)

	plan := &ConcatPlan{Parts: parts}
	for _, p := range parts {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		plan.TotalBytes += info.Size()
	}

	plan.FreeBytes = freeSpace(filepath.Dir(outPath))
	plan.LowSpace = plan.FreeBytes > 0 && plan.FreeBytes < plan.TotalBytes/2
	return plan, nil
}

// Concat merges the planned part files into a single snappy-compressed
// parquet file. The row schema is the canonical accident record, which is
// what the pipeline's parquet sink writes into part directories.
func Concat(plan *ConcatPlan, outPath string) (int64, error) {
	if len(plan.Parts) == 0 {
		return 0, fmt.Errorf("no part files to concatenate")
	}
	if plan.LowSpace {
		log.Printf("warning: low disk space (%s free for %s of parts), merge may fail",
			BytesToReadable(plan.FreeBytes), BytesToReadable(plan.TotalBytes))
	}

	fw, err := local.NewLocalFileWriter(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(models.Accident), 4)
	if err != nil {
		fw.Close()
		return 0, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var written int64
	bar := progressbar.Default(int64(len(plan.Parts)), "concatenating")

	for _, part := range plan.Parts {
		n, err := appendPart(pw, part)
		if err != nil {
			pw.WriteStop()
			fw.Close()
			return written, fmt.Errorf("failed to append %s: %w", part, err)
		}
		written += n
		if err := bar.Add(1); err != nil {
			log.Printf("progress bar error: %v", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return written, fmt.Errorf("failed to finalise %s: %w", outPath, err)
	}
	if err := fw.Close(); err != nil {
		return written, err
	}
	return written, nil
}

func appendPart(pw *writer.ParquetWriter, path string) (int64, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return 0, err
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(models.Accident), 4)
	if err != nil {
		return 0, err
	}
	defer pr.ReadStop()

	total := pr.GetNumRows()
	var copied int64
	for copied < total {
		n := concatBatchSize
		if remaining := total - copied; remaining < int64(n) {
			n = int(remaining)
		}
		rows := make([]models.Accident, n)
		if err := pr.Read(&rows); err != nil {
			return copied, err
		}
		for i := range rows {
			if err := pw.Write(rows[i]); err != nil {
				return copied, err
			}
		}
		copied += int64(n)
	}
	return copied, nil
}

// BytesToReadable renders a byte count for log output.
func BytesToReadable(n int64) string {
	value := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f%s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1fPB", value)
}

func freeSpace(dir string) int64 {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return 0
	}
	return int64(stat.Bavail) * stat.Bsize
}
