package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/santiagocaneppa/Interview-project/constants"
)

// DocumentRun is the ledger row for one document processed within one run.
type DocumentRun struct {
	ID           uuid.UUID              `json:"id"`
	RunID        string                 `json:"run_id"`
	Name         string                 `json:"name"`
	SourcePath   string                 `json:"source_path"`
	Type         constants.DocumentType `json:"type,omitempty"`
	State        constants.DocState     `json:"state"`
	RecordCount  int                    `json:"record_count"`
	StartedAt    time.Time              `json:"started_at"`
	FinishedAt   *time.Time             `json:"finished_at,omitempty"`
	ErrorMessage *string                `json:"error_message,omitempty"`
}
