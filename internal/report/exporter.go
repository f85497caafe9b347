package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chargespot/chargespot/internal/station"
	"github.com/chargespot/chargespot/internal/telemetry"
)

const tracerName = "github.com/chargespot/chargespot/internal/report"

// ExporterConfig holds configuration for the report exporter.
type ExporterConfig struct {
	// Logger for export operations.
	Logger zerolog.Logger

	// Clock supplies the generation time when Meta.GeneratedAt is zero
	// (default: time.Now).
	Clock func() time.Time

	// Compress enables PDF stream compression.
	Compress bool

	// Metrics is optional.
	Metrics *telemetry.ReportMetrics
}

// Exporter writes station reports to disk.
type Exporter struct {
	logger   zerolog.Logger
	clock    func() time.Time
	compress bool
	metrics  *telemetry.ReportMetrics
	tracer   trace.Tracer
}

// NewExporter creates a new report exporter.
func NewExporter(cfg ExporterConfig) *Exporter {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Exporter{
		logger:   cfg.Logger,
		clock:    clock,
		compress: cfg.Compress,
		metrics:  cfg.Metrics,
		tracer:   otel.Tracer(tracerName),
	}
}

// Export renders records, in the given order, into a PDF at path. The file is
// either written completely or not at all: the document goes to a temporary
// file next to path which is then renamed over it.
func (e *Exporter) Export(ctx context.Context, records []station.Station, path string, meta Meta) (err error) {
	if len(records) == 0 {
		return ErrNoSelection
	}
	if path == "" {
		return &ExportError{Path: path, Op: "validate", Err: errors.New("empty destination path")}
	}

	ctx, span := e.tracer.Start(ctx, "report.Export", trace.WithAttributes(
		attribute.Int("report.stations", len(records)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.RecordExport(len(records), time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "export failed")
			e.logger.Error().Err(err).Str("path", path).Msg("report export failed")
		}
	}()

	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = e.clock()
	}

	doc := Compose(records, meta)

	var buf bytes.Buffer
	if err := render(doc, &buf, e.compress); err != nil {
		return &ExportError{Path: path, Op: "render", Err: err}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return err
	}

	e.logger.Info().
		Str("path", path).
		Str("report_id", doc.ID).
		Int("stations", len(records)).
		Int("bytes", buf.Len()).
		Dur("duration", time.Since(start)).
		Msg("report exported")

	return nil
}

// writeAtomic writes data to a temporary file in the destination directory,
// syncs it and renames it onto path. On failure the temporary file is removed.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &ExportError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &ExportError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return &ExportError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &ExportError{Path: path, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ExportError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &ExportError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
