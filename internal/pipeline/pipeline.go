package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ppiankov/log2csv/internal/cache"
	"github.com/ppiankov/log2csv/internal/extract"
	"github.com/ppiankov/log2csv/internal/model"
)

// ErrSourceMissing is returned when {base}_logfile.txt cannot be found
var ErrSourceMissing = errors.New("source log not found")

// inFlight is shared by every Converter in the process
var inFlight = cache.NewClaims(cache.DefaultClaimTTL, 10*time.Minute)

// Converter turns a simulator log into participant, contact and
// transmission tables
type Converter struct {
	extractor *extract.RecordExtractor
	claims    *cache.Claims
	config    *model.Config
}

// NewConverter creates a converter with the given configuration.
// A nil cfg uses model.DefaultConfig.
func NewConverter(cfg *model.Config) *Converter {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return &Converter{
		extractor: extract.NewRecordExtractor(),
		claims:    inFlight,
		config:    cfg,
	}
}

// Summary describes a finished conversion
type Summary struct {
	BasePath   string
	SourcePath string
	Rows       map[model.Kind]int
	Written    []string // published table paths, in schema order
	Skipped    int      // lines with no known tag
	Lines      int
	SourceKept bool
	Duration   time.Duration
}

// SourcePath returns the simulator log path for a base path
func SourcePath(basePath string) string {
	return basePath + model.SourceSuffix
}

// TablePath returns the output path of a schema for a base path
func TablePath(basePath string, s model.Schema) string {
	return basePath + s.Suffix
}

// Convert reads {basePath}_logfile.txt and writes the non-empty tables
// next to it. On success the source log is removed unless KeepLog is set.
// On failure no table is published and the source is left in place.
func (c *Converter) Convert(ctx context.Context, basePath string) (*Summary, error) {
	start := time.Now()

	if err := c.claims.Acquire(basePath); err != nil {
		return nil, err
	}
	defer c.claims.Release(basePath)

	// 1. Open all tables and write headers
	schemas := model.Schemas()
	tables := make(map[model.Kind]*Table, len(schemas))
	defer func() {
		for _, t := range tables {
			t.Discard()
		}
	}()

	for _, s := range schemas {
		t, err := OpenTable(s, TablePath(basePath, s), c.config.Output.UseCRLF)
		if err != nil {
			return nil, err
		}
		tables[s.Kind] = t
	}

	// 2. Open the source
	src := SourcePath(basePath)
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrSourceMissing, err)
		}
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	summary := &Summary{
		BasePath:   basePath,
		SourcePath: src,
		Rows:       make(map[model.Kind]int, len(schemas)),
	}

	// 3. Scan and dispatch
	scanner := bufio.NewScanner(f)
	maxLine := c.config.Scan.MaxLineBytes
	if maxLine <= 0 {
		maxLine = model.DefaultMaxLineBytes
	}
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		rec, ok, err := c.extractor.Extract(lineNo, scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
		if !ok {
			summary.Skipped++
			continue
		}

		if err := tables[rec.Kind].Write(rec.Values); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", src, err)
	}
	summary.Lines = lineNo

	// 4. Publish tables that received rows, drop the rest
	for _, s := range schemas {
		t := tables[s.Kind]
		summary.Rows[s.Kind] = t.Rows()
		written, err := t.Commit()
		if err != nil {
			return nil, err
		}
		if written {
			summary.Written = append(summary.Written, t.Path())
		}
	}

	// 5. Remove the source
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close source: %w", err)
	}
	if c.config.Output.KeepLog {
		summary.SourceKept = true
	} else if err := os.Remove(src); err != nil {
		return nil, fmt.Errorf("remove source: %w", err)
	}

	summary.Duration = time.Since(start)
	return summary, nil
}
