package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/santiagocaneppa/Interview-project/internal/classify"
	"github.com/santiagocaneppa/Interview-project/internal/common"
	"github.com/santiagocaneppa/Interview-project/internal/consolidate"
	"github.com/santiagocaneppa/Interview-project/internal/extract"
	"github.com/santiagocaneppa/Interview-project/internal/llm/openai"
	"github.com/santiagocaneppa/Interview-project/internal/normalize"
	"github.com/santiagocaneppa/Interview-project/internal/ocr"
	"github.com/santiagocaneppa/Interview-project/internal/pdftext"
	"github.com/santiagocaneppa/Interview-project/internal/pipeline"
	"github.com/santiagocaneppa/Interview-project/internal/probe"
	"github.com/santiagocaneppa/Interview-project/internal/repository"
	"github.com/santiagocaneppa/Interview-project/internal/server"
)

// newProber builds the content prober; it needs no model access.
func newProber(cfg *common.Config, logger *slog.Logger) (*probe.Prober, pdftext.Reader, *ocr.Extractor) {
	runner := ocr.ExecRunner{Logger: logger}
	ocrx := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
		Contrast:      cfg.OCR.Contrast,
		Brightness:    cfg.OCR.Brightness,
	}, runner, logger)

	var text pdftext.Reader = pdftext.NewNativeReader(pdftext.LayoutOptions{}, logger)
	if cfg.OCR.Pdftotext != "" {
		text = pdftext.FallbackReader{
			Primary:   text,
			Secondary: pdftext.NewPopplerReader(cfg.OCR.Pdftotext, runner, logger),
			Logger:    logger,
		}
	}

	images := probe.NewImageSignal(cfg.OCR.ImageSignal, ocrx.Rasterizer(), cfg.OCR.ProbeDPI)
	return probe.NewProber(text, images, logger), text, ocrx
}

// wired is the assembled pipeline plus the optional ledger database.
type wired struct {
	proc   *pipeline.Processor
	db     *repository.DB
	logger *slog.Logger
}

func (w *wired) Close() {
	if w.db == nil {
		return
	}
	if err := w.db.Close(); err != nil {
		w.logger.Error("db.close.failed", "error", err)
	}
}

func (w *wired) healthChecks() []server.HealthCheck {
	if w.db == nil {
		return nil
	}
	return []server.HealthCheck{{
		Service: "ledger",
		Check: func(ctx context.Context) error {
			return w.db.HealthCheck(ctx, 2*time.Second)
		},
	}}
}

// newProcessor wires the whole pipeline from cfg.
func newProcessor(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*wired, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &wired{logger: logger}

	prober, text, ocrx := newProber(cfg, logger)

	completer := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
		RatePerMin:  cfg.LLM.RatePerMin,
	}, logger)

	tables := extract.NewTableExtractor(text, logger)
	images := extract.NewOCRExtractor(ocrx, logger)
	router := extract.Router{
		Table: tables,
		Image: images,
		Mixed: extract.NewMixedExtractor(tables, images, logger),
	}

	opts := []pipeline.Option{
		pipeline.WithExporter(consolidate.NewXLSXExporter(logger)),
	}
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "open ledger", err)
		}
		w.db = db
		opts = append(opts, pipeline.WithLedger(repository.NewDocumentRunRepository(db, logger)))
	}

	w.proc = pipeline.NewProcessor(
		pipeline.Config{
			ScratchDir:  cfg.Pipeline.ScratchDir,
			SideFileDir: cfg.Pipeline.SideFileDir,
			OutputFile:  cfg.Pipeline.OutputFile,
			ExportXLSX:  cfg.Pipeline.ExportXLSX,
		},
		classify.NewClassifier(prober, completer, logger),
		router,
		normalize.NewNormalizer(normalize.Config{Lenient: cfg.LLM.Lenient}, completer, logger),
		consolidate.NewCSVWriter(logger),
		logger,
		opts...,
	)
	return w, nil
}
