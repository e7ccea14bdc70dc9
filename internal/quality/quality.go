package quality

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/primeinsights/proof-engine/internal/encoding"
	apperrors "github.com/primeinsights/proof-engine/internal/errors"
	"github.com/primeinsights/proof-engine/internal/monitoring"
	"github.com/primeinsights/proof-engine/internal/types"
)

// RemoteLogger mirrors the attestation service's best-effort log sink.
// Implementations must never fail the run.
type RemoteLogger interface {
	Log(ctx context.Context, content string)
}

// Engine runs the full quality pass: discover recognized files, extract
// metadata, score, optionally validate semantically, and encode the
// ordered results.
type Engine struct {
	thresholds *Thresholds
	evaluator  Evaluator
	limiter    *rate.Limiter
	logger     *monitoring.Logger
	remote     RemoteLogger
}

// NewEngine builds an engine. evaluator may be nil, in which case
// semantic validation is skipped for every category.
func NewEngine(thresholds *Thresholds, evaluator Evaluator, logger *monitoring.Logger) *Engine {
	return &Engine{
		thresholds: thresholds,
		evaluator:  evaluator,
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		logger:     logger,
	}
}

// WithRemoteLogger attaches a best-effort remote log sink.
func (e *Engine) WithRemoteLogger(remote RemoteLogger) *Engine {
	e.remote = remote
	return e
}

// Result is the output of one quality pass.
type Result struct {
	// Packed is the hex score record in fixed category order.
	Packed string
	// Scores holds the per-file raw score pairs, keyed by canonical
	// file name, for the files actually found.
	Scores map[string]types.ScorePair
	// Results holds the full per-category outcome, including validity
	// flags and reasons, for logging and diagnostics.
	Results map[Category]CategoryResult
}

// Run executes the quality pass over the extracted contribution
// directory. A file that fails extraction aborts the whole pass.
func (e *Engine) Run(ctx context.Context, inputDir string) (*Result, error) {
	files, err := findCategoryFiles(inputDir)
	if err != nil {
		return nil, err
	}

	results := make(map[Category]CategoryResult, len(files))
	scores := make(map[string]types.ScorePair, len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewTimeoutError("quality pass", err)
		}

		rows, err := ReadRows(file.path)
		if err != nil {
			return nil, err
		}

		metadata, err := ExtractMetadata(file.category, rows)
		if err != nil {
			return nil, err
		}

		component := ScoreMetadata(metadata, e.thresholds)

		var validation ValidationScore
		if e.evaluator != nil && component.Valid {
			validation = ValidateSample(ctx, e.evaluator, e.limiter, rows, file.category, e.thresholds)
		}

		e.logger.CategoryScoreLogger(file.category.FileName(), component.Score, validation.Score, component.Valid, component.Reasons)
		e.remoteLog(ctx, fmt.Sprintf("scored %s: metadata=%.4f validation=%.4f valid=%t",
			file.category.FileName(), component.Score, validation.Score, component.Valid))

		results[file.category] = CategoryResult{Metadata: component, Validation: validation}
		scores[file.category.FileName()] = types.ScorePair{
			MetadataScore:   component.Score,
			ValidationScore: validation.Score,
		}
	}

	packed, err := encoding.Encode(OrderedPairs(results))
	if err != nil {
		return nil, err
	}

	return &Result{
		Packed:  packed,
		Scores:  scores,
		Results: results,
	}, nil
}

func (e *Engine) remoteLog(ctx context.Context, content string) {
	if e.remote != nil {
		e.remote.Log(ctx, content)
	}
}

type categoryFile struct {
	category Category
	path     string
}

// findCategoryFiles walks the input tree and collects the recognized
// dataset files, ordered by category ordinal. Names are matched
// case-sensitively against the canonical registry names; everything
// else is ignored.
func findCategoryFiles(inputDir string) ([]categoryFile, error) {
	found := make(map[Category]string, NumCategories)

	err := filepath.WalkDir(inputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if category, ok := CategoryForFile(entry.Name()); ok {
			if _, seen := found[category]; !seen {
				found[category] = path
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("walking input directory %s", inputDir), err)
	}

	files := make([]categoryFile, 0, len(found))
	for _, category := range Categories() {
		if path, ok := found[category]; ok {
			files = append(files, categoryFile{category: category, path: path})
		}
	}
	return files, nil
}

// ReadRows reads a CSV file into header-keyed rows. A UTF-8 BOM on the
// first header cell is stripped. Short rows keep only the fields they
// have; extra cells are dropped.
func ReadRows(path string) ([]types.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("reading header of %s", path), err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows []types.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("reading %s", path), err)
		}

		row := make(types.RawRow, len(header))
		for i, field := range header {
			if i < len(record) {
				row[field] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
