package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/csvfilter/internal/logging"
	"github.com/google/uuid"
)

// ErrNoFile is returned when an upload request carries no file.
var ErrNoFile = errors.New("no file provided")

// ServiceOptions configures a Service. Zero values fall back to defaults.
type ServiceOptions struct {
	MaxFileSize   int64
	MaxConcurrent int
	MaxWait       time.Duration
	SessionTTL    time.Duration
	MaxDatasets   int
	DisplayRows   int
}

// DefaultDisplayRows caps the rows rendered in a view.
const DefaultDisplayRows = 1000

// Service loads uploads, keeps their source tables and runs the pipeline
// for every interaction. It is safe for concurrent use.
type Service struct {
	loader      *Loader
	limiter     *LoadLimiter
	store       *Store
	fingerprint *Fingerprinter
	displayRows int
}

// NewService creates a new Service instance.
func NewService(opts ServiceOptions) (*Service, error) {
	fp, err := NewFingerprinter()
	if err != nil {
		return nil, err
	}
	rows := opts.DisplayRows
	if rows <= 0 {
		rows = DefaultDisplayRows
	}
	return &Service{
		loader:      NewLoader(opts.MaxFileSize),
		limiter:     NewLoadLimiter(opts.MaxConcurrent, opts.MaxWait),
		store:       NewStore(opts.SessionTTL, opts.MaxDatasets),
		fingerprint: fp,
		displayRows: rows,
	}, nil
}

// LoadUpload decodes an uploaded file, normalises its date columns and
// stores it as a new dataset. Identical bytes already held by a live dataset
// reuse its parsed table.
func (s *Service) LoadUpload(ctx context.Context, fileName string, data []byte) (*Dataset, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	origin := OriginFromContext(ctx)
	log := logging.WithFields(ctx, "file", fileName, "bytes", len(data), "origin", origin)
	start := time.Now()

	sum := s.fingerprint.Sum(data)
	source, cached := s.store.LookupFingerprint(sum)
	if !cached {
		t, err := s.loader.Load(data)
		if err != nil {
			log.Warn("upload rejected", "error", err)
			return nil, err
		}
		source = ParseDates(t)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := s.store.Put(Dataset{
		FileName:    fileName,
		Fingerprint: sum,
		Size:        len(data),
		Source:      source,
		Origin:      origin,
	})
	log.Info("dataset loaded",
		"dataset_id", ds.ID,
		"rows", source.Len(),
		"columns", source.Width(),
		"encoding", source.Encoding,
		"reused", cached,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ds, nil
}

// Dataset returns a live dataset.
func (s *Service) Dataset(id uuid.UUID) (*Dataset, error) {
	return s.store.Get(id)
}

// View is everything a page needs for one interaction.
type View struct {
	Dataset    *Dataset
	Selections Selections
	Result     *Result

	// Rows is the filtered table limited to the display columns and the
	// display row cap.
	Rows      *Table
	Truncated bool
}

// View runs the pipeline for a dataset with the given selections and
// display column choice.
func (s *Service) View(ctx context.Context, id uuid.UUID, sel Selections, display []string) (*View, error) {
	ds, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := Run(ds.Source, sel, display)
	rows := res.Table.Select(res.Display)
	v := &View{
		Dataset:    ds,
		Selections: sel,
		Result:     res,
		Rows:       rows.Head(s.displayRows),
		Truncated:  rows.Len() > s.displayRows,
	}

	logging.WithFields(ctx, "dataset_id", id).Debug("view computed",
		"rows", res.Table.Len(),
		"active_filters", res.ActiveFilters(),
	)
	return v, nil
}

// Export filters a dataset and serializes the result. Exports always carry
// every column and every row of the filtered table.
func (s *Service) Export(ctx context.Context, id uuid.UUID, sel Selections, format Format) (*Export, error) {
	ds, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered := Apply(ds.Source, sel)
	exp, err := ExportTable(filtered, format)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", id, err)
	}

	logging.WithFields(ctx, "dataset_id", id).Info("dataset exported",
		"format", format,
		"rows", filtered.Len(),
		"bytes", len(exp.Data),
	)
	return exp, nil
}

// Forget drops a dataset. Unknown IDs are not an error.
func (s *Service) Forget(id uuid.UUID) {
	s.store.Delete(id)
}

// LoadStatus reports load limiter usage.
func (s *Service) LoadStatus() LoadLimiterStatus {
	return s.limiter.Status()
}

// DatasetCount returns the number of datasets held in memory.
func (s *Service) DatasetCount() int {
	return s.store.Len()
}

// WaitForLoads blocks until in-flight loads finish or ctx ends.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
