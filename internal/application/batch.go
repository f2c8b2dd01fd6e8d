package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/csvfilter/internal/core"
	"github.com/JonMunkholm/csvfilter/internal/logging"
	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoInputs is returned when no pattern matches a file.
var ErrNoInputs = errors.New("no input files matched")

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Inputs      []string
	Presets     []Preset
	OutDir      string
	Formats     []core.Format
	MaxFileSize int64
}

// FileResult reports one input file processed with one preset.
type FileResult struct {
	Input      string
	Preset     string
	Encoding   string
	SourceRows int
	Rows       int
	Outputs    []string
	Err        error
}

// ExpandInputs resolves glob patterns (with ** support) to a sorted,
// de-duplicated list of regular files. Patterns without glob characters
// name files directly.
func ExpandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	sort.Strings(files)
	return files, nil
}

// RunBatch loads every input, applies every preset and writes one export
// per format to <out>/<basename>[/<preset>]/<export file name>. Files are
// independent: a failure is recorded in its result and the run continues.
// The returned error is set when at least one file failed.
func RunBatch(ctx context.Context, opts BatchOptions) ([]FileResult, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = []core.Format{core.FormatCSV}
	}
	if len(opts.Presets) == 0 {
		opts.Presets = []Preset{{}}
	}

	svc, err := core.NewService(core.ServiceOptions{
		MaxFileSize:   opts.MaxFileSize,
		MaxConcurrent: 1,
		MaxDatasets:   1,
	})
	if err != nil {
		return nil, err
	}

	ctx = core.ContextWithOrigin(ctx, "cli")
	dirs := outputDirs(opts.Inputs)

	var results []FileResult
	failed := 0
	for _, input := range opts.Inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		fileResults := runFile(ctx, svc, input, filepath.Join(opts.OutDir, dirs[input]), opts)
		for _, r := range fileResults {
			if r.Err != nil {
				failed++
			}
		}
		results = append(results, fileResults...)
	}

	if failed > 0 {
		return results, fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return results, nil
}

func runFile(ctx context.Context, svc *core.Service, input, dir string, opts BatchOptions) []FileResult {
	log := logging.WithFields(ctx, "input", input)
	start := time.Now()

	fail := func(err error) []FileResult {
		log.Error("input failed", "error", err, "code", core.MapError(err).Code)
		return []FileResult{{Input: input, Err: err}}
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fail(fmt.Errorf("read %s: %w", input, err))
	}
	ds, err := svc.LoadUpload(ctx, filepath.Base(input), data)
	if err != nil {
		return fail(err)
	}
	defer svc.Forget(ds.ID)

	var results []FileResult
	for _, preset := range opts.Presets {
		res := FileResult{
			Input:      input,
			Preset:     preset.Name,
			Encoding:   ds.Encoding(),
			SourceRows: ds.Source.Len(),
		}
		target := dir
		if preset.Name != "" {
			target = filepath.Join(dir, preset.Name)
		}
		res.Rows, res.Outputs, res.Err = writeExports(ctx, svc, ds, preset.Selections(), target, opts.Formats)
		if res.Err != nil {
			log.Error("export failed", "preset", preset.Name, "error", res.Err)
		}
		results = append(results, res)
	}

	log.Info("input processed",
		"rows", ds.Source.Len(),
		"presets", len(opts.Presets),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results
}

func writeExports(ctx context.Context, svc *core.Service, ds *core.Dataset, sel core.Selections, dir string, formats []core.Format) (int, []string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, nil, fmt.Errorf("create output directory: %w", err)
	}

	rows := 0
	var outputs []string
	for _, format := range formats {
		exp, err := svc.Export(ctx, ds.ID, sel, format)
		if err != nil {
			return rows, outputs, err
		}
		path := filepath.Join(dir, exp.FileName)
		if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
			return rows, outputs, fmt.Errorf("write %s: %w", path, err)
		}
		rows = exp.Rows
		outputs = append(outputs, path)
	}
	return rows, outputs, nil
}

// outputDirs names one output directory per input after its base name with
// data and compression extensions removed. Clashing names get the first free
// numeric suffix in input order, so no two inputs share a directory.
func outputDirs(inputs []string) map[string]string {
	dirs := make(map[string]string, len(inputs))
	taken := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		base := stem(filepath.Base(input))
		name := base
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		taken[name] = true
		dirs[input] = name
	}
	return dirs
}

func stem(name string) string {
	for {
		ext := strings.ToLower(filepath.Ext(name))
		switch ext {
		case ".gz", ".xz", ".bz2", ".csv", ".txt":
			name = strings.TrimSuffix(name, filepath.Ext(name))
		default:
			if name == "" {
				return "input"
			}
			return name
		}
	}
}
