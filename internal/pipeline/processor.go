// Package pipeline drives each document through classification, extraction and
// normalization, and merges the surviving records into the run's dataset.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/common"
	"github.com/santiagocaneppa/Interview-project/internal/consolidate"
	"github.com/santiagocaneppa/Interview-project/internal/entity"
	"github.com/santiagocaneppa/Interview-project/internal/extract"
	"github.com/santiagocaneppa/Interview-project/internal/ingest"
	"github.com/santiagocaneppa/Interview-project/internal/normalize"
)

var (
	ErrInputDir  = common.NewAppError("INPUT_DIR", "input directory is missing or not a directory", common.ErrInvalidInput)
	ErrOutputDir = common.NewAppError("OUTPUT_DIR", "output directory is missing or not writable", common.ErrInvalidInput)

	errNothingExtracted = errors.New("nothing usable extracted")
	errNoRecords        = errors.New("normalizer produced no records")
)

type Classifier interface {
	Classify(ctx context.Context, path string) (constants.DocumentType, error)
}

type ExtractorRouter interface {
	For(t constants.DocumentType) (extract.Extractor, error)
}

type Normalizer interface {
	Normalize(ctx context.Context, raw *extract.RawExtraction) (normalize.Result, error)
}

type Consolidator interface {
	Write(path string, records []entity.Record) (consolidate.Summary, error)
}

// Exporter mirrors the written dataset into another format.
type Exporter interface {
	Export(csvPath string) (string, error)
}

// Ledger records document progress. Failures are logged and never affect processing.
type Ledger interface {
	Start(ctx context.Context, runID, name, sourcePath string) (uuid.UUID, error)
	Transition(ctx context.Context, id uuid.UUID, state constants.DocState, docType constants.DocumentType) error
	Finish(ctx context.Context, id uuid.UUID, state constants.DocState, records int, errMsg *string) error
}

type Processor struct {
	cfg        Config
	classifier Classifier
	extractors ExtractorRouter
	normalizer Normalizer
	sink       Consolidator
	exporter   Exporter
	ledger     Ledger
	logger     *slog.Logger

	// slot admits one run at a time; every run appends to the same dataset.
	slot chan struct{}
}

type Option func(*Processor)

func WithLedger(l Ledger) Option {
	return func(p *Processor) { p.ledger = l }
}

func WithExporter(x Exporter) Option {
	return func(p *Processor) { p.exporter = x }
}

func NewProcessor(cfg Config, classifier Classifier, extractors ExtractorRouter, normalizer Normalizer, sink Consolidator, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		cfg:        cfg.withDefaults(),
		classifier: classifier,
		extractors: extractors,
		normalizer: normalizer,
		sink:       sink,
		logger:     logger,
		slot:       make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Outcome is the result of one document. Err is set exactly when the document was skipped.
type Outcome struct {
	Document Document
	Records  []entity.Record
	SideFile string
	Err      error
}

func (o Outcome) Skipped() bool { return o.Document.State == constants.DocStateSkipped }

// ProcessDocument runs one PDF through the state machine. It never fails: every problem
// turns the document SKIPPED with the cause in Outcome.Err.
func (p *Processor) ProcessDocument(ctx context.Context, path string) (out Outcome) {
	start := time.Now()
	doc := NewDocument(path)
	logger := common.LoggerFrom(ctx, p.logger).With("doc", doc.Name)
	ledgerID := p.ledgerStart(ctx, doc)

	defer func() {
		if rec := recover(); rec != nil {
			out.Err = fmt.Errorf("panic: %v", rec)
			out.Records = nil
		}
		if out.Err != nil {
			from := doc.State
			doc.State = constants.DocStateSkipped
			logger.Warn("pipeline.document.skipped",
				"from_state", from,
				"type", doc.Type,
				"error", out.Err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		} else {
			logger.Info("pipeline.document.merged",
				"type", doc.Type,
				"records", len(out.Records),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}
		out.Document = *doc
		p.ledgerFinish(ctx, ledgerID, doc.State, len(out.Records), out.Err)
	}()

	scratch, err := stage(p.cfg.ScratchDir, path)
	if err != nil {
		return Outcome{Err: err}
	}
	doc.ScratchPath = scratch
	defer func() {
		if err := unstage(scratch); err != nil {
			logger.Warn("pipeline.scratch.cleanup_failed", "path", scratch, "error", err)
		}
	}()

	// DISCOVERED -> CLASSIFIED
	docType, err := p.classifier.Classify(ctx, scratch)
	if err != nil {
		return Outcome{Err: fmt.Errorf("classify: %w", err)}
	}
	doc.Type = docType
	p.step(ctx, ledgerID, doc, constants.DocStateClassified)

	// CLASSIFIED -> EXTRACTED
	x, err := p.extractors.For(docType)
	if err != nil {
		return Outcome{Err: err}
	}
	raw, err := x.Extract(ctx, scratch)
	if err != nil {
		return Outcome{Err: fmt.Errorf("extract: %w", err)}
	}
	if raw.Empty() {
		return Outcome{Err: errNothingExtracted}
	}
	p.step(ctx, ledgerID, doc, constants.DocStateExtracted)

	// EXTRACTED -> NORMALIZED
	res, err := p.normalizer.Normalize(ctx, raw)
	if err != nil {
		return Outcome{Err: fmt.Errorf("normalize: %w", err)}
	}
	sideFile := p.writeSideFile(logger, doc, raw, res)
	if res.Invalid != nil {
		return Outcome{SideFile: sideFile, Err: fmt.Errorf("normalize: %w", res.Invalid)}
	}
	if len(res.Records) == 0 {
		return Outcome{SideFile: sideFile, Err: errNoRecords}
	}
	p.step(ctx, ledgerID, doc, constants.DocStateNormalized)

	// NORMALIZED -> MERGED
	if n := stampNames(res.Records, DocumentName(path)); n > 0 {
		logger.Info("pipeline.document.name_stamped", "records", n)
	}
	p.step(ctx, ledgerID, doc, constants.DocStateMerged)

	return Outcome{Records: res.Records, SideFile: sideFile}
}

// step advances the document; the lifecycle is linear here so a failure is a programming error.
func (p *Processor) step(ctx context.Context, ledgerID uuid.UUID, doc *Document, to constants.DocState) {
	if err := doc.advance(to); err != nil {
		panic(err)
	}
	if p.ledger == nil || ledgerID == uuid.Nil {
		return
	}
	if err := p.ledger.Transition(ctx, ledgerID, to, doc.Type); err != nil {
		p.logger.Warn("pipeline.ledger.transition_failed", "doc", doc.Name, "state", to, "error", err)
	}
}

func (p *Processor) writeSideFile(logger *slog.Logger, doc *Document, raw *extract.RawExtraction, res normalize.Result) string {
	records := res.Records
	if records == nil {
		records = []entity.Record{}
	}
	path, err := WriteSideFile(p.cfg.SideFileDir, SideFile{
		Document:   doc.Name,
		Type:       doc.Type,
		Extraction: raw,
		Records:    records,
		Invalid:    res.Invalid,
	})
	if err != nil {
		logger.Warn("pipeline.sidefile.failed", "error", err)
		return ""
	}
	return path
}

func (p *Processor) ledgerStart(ctx context.Context, doc *Document) uuid.UUID {
	if p.ledger == nil {
		return uuid.Nil
	}
	id, err := p.ledger.Start(ctx, common.RunIDFromContext(ctx), doc.Name, doc.SourcePath)
	if err != nil {
		p.logger.Warn("pipeline.ledger.start_failed", "doc", doc.Name, "error", err)
		return uuid.Nil
	}
	return id
}

func (p *Processor) ledgerFinish(ctx context.Context, id uuid.UUID, state constants.DocState, records int, cause error) {
	if p.ledger == nil || id == uuid.Nil {
		return
	}
	var msg *string
	if cause != nil {
		s := cause.Error()
		msg = &s
	}
	// Record the outcome even when the run was cancelled.
	if err := p.ledger.Finish(context.WithoutCancel(ctx), id, state, records, msg); err != nil {
		p.logger.Warn("pipeline.ledger.finish_failed", "id", id, "error", err)
	}
}

// RunSummary describes one directory run.
type RunSummary struct {
	RunID      string
	Discovered int
	Merged     int
	Skipped    int
	Records    int
	OutputCSV  string // empty when nothing was written
	OutputXLSX string
	Outcomes   []Outcome
}

// OutputPath is the dataset path for an output directory.
func (p *Processor) OutputPath(outputDir string) string {
	return filepath.Join(outputDir, p.cfg.OutputFile)
}

// ValidateDirs checks the run's directories before any document is touched.
func ValidateDirs(inputDir, outputDir string) error {
	in := common.NewValidator().Field("input_dir", inputDir, common.Required, common.ExistingDir)
	if in.HasErrors() {
		return fmt.Errorf("%w: %s", ErrInputDir, in.ErrorMessage())
	}
	out := common.NewValidator().Field("output_dir", outputDir, common.Required, common.ExistingDir, common.WritableDir)
	if out.HasErrors() {
		return fmt.Errorf("%w: %s", ErrOutputDir, out.ErrorMessage())
	}
	return nil
}

// ProcessDirectory processes every PDF in inputDir, one at a time in name order, and appends
// the merged records to the dataset in outputDir. Only directory problems and dataset write
// failures are returned as errors.
func (p *Processor) ProcessDirectory(ctx context.Context, inputDir, outputDir string) (RunSummary, error) {
	if err := ValidateDirs(inputDir, outputDir); err != nil {
		return RunSummary{}, err
	}

	paths, stats, err := ingest.ListPDFs(inputDir)
	if err != nil {
		return RunSummary{}, fmt.Errorf("%w: %v", ErrInputDir, err)
	}
	p.logger.Info("pipeline.run.listing",
		"input_dir", inputDir,
		"scanned", stats.Scanned,
		"pdfs", stats.Matched,
	)
	return p.run(ctx, paths, outputDir)
}

// ProcessFiles runs the given PDFs as one run into the dataset in outputDir. Runs from every
// entry point share one slot, so a second run waits until the first has written its output.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string, outputDir string) (RunSummary, error) {
	out := common.NewValidator().Field("output_dir", outputDir, common.Required, common.ExistingDir, common.WritableDir)
	if out.HasErrors() {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrOutputDir, out.ErrorMessage())
	}
	return p.run(ctx, paths, outputDir)
}

func (p *Processor) run(ctx context.Context, paths []string, outputDir string) (RunSummary, error) {
	select {
	case p.slot <- struct{}{}:
	case <-ctx.Done():
		return RunSummary{}, ctx.Err()
	}
	defer func() { <-p.slot }()

	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	logger := common.LoggerFrom(ctx, p.logger)
	start := time.Now()
	logger.Info("pipeline.run.start", "documents", len(paths), "output_dir", outputDir)

	sum := RunSummary{RunID: runID}
	var records []entity.Record
	var runErr error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		sum.Discovered++
		o := p.ProcessDocument(ctx, path)
		sum.Outcomes = append(sum.Outcomes, o)
		if o.Skipped() {
			sum.Skipped++
			continue
		}
		sum.Merged++
		records = append(records, o.Records...)
	}
	sum.Records = len(records)

	if err := p.consolidate(ctx, outputDir, records, &sum); err != nil {
		return sum, err
	}

	logger.Info("pipeline.run.done",
		"discovered", sum.Discovered,
		"merged", sum.Merged,
		"skipped", sum.Skipped,
		"records", sum.Records,
		"output_csv", sum.OutputCSV,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return sum, runErr
}

func (p *Processor) consolidate(ctx context.Context, outputDir string, records []entity.Record, sum *RunSummary) error {
	logger := common.LoggerFrom(ctx, p.logger)
	written, err := p.sink.Write(p.OutputPath(outputDir), records)
	if errors.Is(err, consolidate.ErrNoRecords) {
		logger.Warn("pipeline.run.no_records", "output_dir", outputDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("consolidate: %w", err)
	}
	sum.OutputCSV = written.Path

	if p.cfg.ExportXLSX && p.exporter != nil {
		out, err := p.exporter.Export(written.Path)
		if err != nil {
			logger.Warn("pipeline.xlsx.failed", "error", err)
			return nil
		}
		sum.OutputXLSX = out
	}
	return nil
}
