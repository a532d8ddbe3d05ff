package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/santiagocaneppa/Interview-project/internal/common"
	"github.com/santiagocaneppa/Interview-project/internal/pipeline"
)

const (
	msgDone        = "Processamento concluído!"
	msgBadInputDir = "O diretório de PDFs não foi encontrado ou não é válido."
	msgBadOutDir   = "O diretório de saída não existe ou não é gravável. Verifique o caminho informado."
)

// DirectoryProcessor is the part of pipeline.Processor the API drives.
type DirectoryProcessor interface {
	ProcessDirectory(ctx context.Context, inputDir, outputDir string) (pipeline.RunSummary, error)
	OutputPath(outputDir string) string
}

type ProcessResponse struct {
	Message   string `json:"message"`
	OutputCSV string `json:"output_csv"`
	RunID     string `json:"run_id,omitempty"`
	Documents int    `json:"documents"`
	Merged    int    `json:"merged"`
	Skipped   int    `json:"skipped"`
	Records   int    `json:"records"`
}

// ProcessHandler runs a whole directory per request. The processor serializes runs.
type ProcessHandler struct {
	proc   DirectoryProcessor
	logger *slog.Logger
}

func NewProcessHandler(proc DirectoryProcessor, logger *slog.Logger) *ProcessHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessHandler{proc: proc, logger: logger}
}

func (h *ProcessHandler) Attach(r chi.Router) {
	r.Post("/process/", h.handleProcess)
	r.Post("/process", h.handleProcess)
}

func (h *ProcessHandler) handleProcess(w http.ResponseWriter, r *http.Request) {
	inputDir := strings.TrimSpace(r.FormValue("pdf_path"))
	outputDir := strings.TrimSpace(r.FormValue("output_dir"))
	logger := common.LoggerFrom(r.Context(), h.logger)

	// Fail fast on bad paths without waiting for a running batch.
	if err := pipeline.ValidateDirs(inputDir, outputDir); err != nil {
		logger.Warn("api.process.invalid", "pdf_path", inputDir, "output_dir", outputDir, "error", err)
		writeError(w, common.HTTPStatus(err), dirMessage(err))
		return
	}

	sum, err := h.proc.ProcessDirectory(r.Context(), inputDir, outputDir)
	if err != nil {
		logger.Error("api.process.failed", "pdf_path", inputDir, "error", err)
		code := common.HTTPStatus(err)
		if code == http.StatusBadRequest {
			writeError(w, code, dirMessage(err))
			return
		}
		writeError(w, code, err.Error())
		return
	}

	writeJson(w, ProcessResponse{
		Message:   msgDone,
		OutputCSV: h.proc.OutputPath(outputDir),
		RunID:     sum.RunID,
		Documents: sum.Discovered,
		Merged:    sum.Merged,
		Skipped:   sum.Skipped,
		Records:   sum.Records,
	})
}

func dirMessage(err error) string {
	if errors.Is(err, pipeline.ErrOutputDir) {
		return msgBadOutDir
	}
	return msgBadInputDir
}
