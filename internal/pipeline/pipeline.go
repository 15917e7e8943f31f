// Package pipeline orchestrates one run: per-document acquisition,
// extraction and volume normalization fan out across a bounded worker pool,
// then reconciliation and reporting run once over the complete candidate set.
// Reconciliation is a hard barrier; no partial results are exposed before it.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ssoetl/internal/acquire"
	"ssoetl/internal/extract"
	"ssoetl/internal/logger"
	"ssoetl/internal/reconcile"
	"ssoetl/internal/report"
	"ssoetl/internal/volume"
	"ssoetl/pkg/models"
)

// ErrNoDocuments is returned when a run is started with nothing to process.
var ErrNoDocuments = errors.New("no documents to process")

// ErrAllDocumentsUnreadable is returned when documents were found but not one
// of them could be read. Distinct from ErrNoDocuments so "input missing" and
// "input rotten" diagnose differently.
var ErrAllDocumentsUnreadable = errors.New("all documents unreadable")

// Acquirer produces the text of one document. Satisfied by
// acquire.Extractor; tests substitute fakes.
type Acquirer interface {
	Acquire(ctx context.Context, path string) (*acquire.ExtractedText, error)
}

// Runner executes pipeline runs.
type Runner struct {
	acquirer Acquirer
	workers  int
	log      zerolog.Logger
}

// New builds a Runner with a pool of the given size. workers <= 0 means 4.
func New(acquirer Acquirer, workers int) *Runner {
	if workers <= 0 {
		workers = 4
	}
	return &Runner{
		acquirer: acquirer,
		workers:  workers,
		log:      logger.WithComponent("pipeline"),
	}
}

// Result is the output of one run.
type Result struct {
	Records []models.FinalRecord
	Counts  models.PipelineCounts
	Summary report.Summary
}

// outcome is the per-document worker result, collected positionally so no
// locking is needed.
type outcome struct {
	candidate         *models.CandidateRecord
	unreadable        bool
	ocrFallback       bool
	recognitionFailed bool
}

// Run processes the given documents and reconciles the results. Paths are
// sorted by file name first so duplicate tie-breaking does not depend on
// discovery order. Individual document failures are recorded in the counts
// rather than returned; the run itself fails only on empty input, on a fully
// unreadable input set, or on context cancellation.
func (r *Runner) Run(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, ErrNoDocuments
	}

	sorted := append([]string(nil), paths...)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})

	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()
	started := time.Now()
	log.Info().Int("documents", len(sorted)).Int("workers", r.workers).Msg("run started")

	outcomes := make([]outcome, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.processDocument(gctx, path)
			return nil
		})
	}

	// Barrier: reconciliation needs the complete candidate set.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := models.PipelineCounts{DocumentsSeen: len(sorted)}
	candidates := make([]models.CandidateRecord, 0, len(sorted))
	for _, o := range outcomes {
		if o.unreadable {
			counts.DocumentsUnreadable++
			continue
		}
		if o.ocrFallback {
			counts.OCRFallbacks++
		}
		if o.recognitionFailed {
			counts.RecognitionFailures++
		}
		if o.candidate != nil {
			candidates = append(candidates, *o.candidate)
		}
	}

	if counts.DocumentsUnreadable == counts.DocumentsSeen {
		return nil, ErrAllDocumentsUnreadable
	}

	reconciled := reconcile.Reconcile(candidates)
	counts.DuplicatesSuperseded = reconciled.DuplicatesSuperseded

	summary := report.BuildSummary(reconciled.Records, counts)
	log.Info().
		Int("records", len(reconciled.Records)).
		Int("unreadable", counts.DocumentsUnreadable).
		Int("ocr_fallbacks", counts.OCRFallbacks).
		Dur("elapsed", time.Since(started)).
		Msg("run complete")

	return &Result{Records: reconciled.Records, Counts: counts, Summary: summary}, nil
}

// RunDir discovers every PDF under dir (recursively) and runs them.
func (r *Runner) RunDir(ctx context.Context, dir string) (*Result, error) {
	paths, err := DiscoverPDFs(dir)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, paths)
}

func (r *Runner) processDocument(ctx context.Context, path string) outcome {
	text, err := r.acquirer.Acquire(ctx, path)
	if err != nil {
		r.log.Warn().Str("file", path).Err(err).Msg("document skipped")
		return outcome{unreadable: true}
	}

	rec := extract.Record(text, filepath.Base(path))
	rec.Volume = volume.Parse(rec.VolumeRaw)

	return outcome{
		candidate:         &rec,
		ocrFallback:       text.Source == models.TextSourceRecognized,
		recognitionFailed: text.RecognitionFailed,
	}
}

// DiscoverPDFs lists every .pdf file under dir, sorted by file name.
func DiscoverPDFs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths, nil
}
