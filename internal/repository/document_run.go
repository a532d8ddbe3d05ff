package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/common"
	"github.com/santiagocaneppa/Interview-project/internal/entity"
)

type DocumentRunRepository interface {
	Start(ctx context.Context, runID, name, sourcePath string) (uuid.UUID, error)
	Transition(ctx context.Context, id uuid.UUID, state constants.DocState, docType constants.DocumentType) error
	Finish(ctx context.Context, id uuid.UUID, state constants.DocState, records int, errMsg *string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DocumentRun, error)
	ListByRun(ctx context.Context, runID string) ([]*entity.DocumentRun, error)
}

type documentRunRepo struct {
	db  *DB
	log *slog.Logger
}

func NewDocumentRunRepository(db *DB, log *slog.Logger) DocumentRunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &documentRunRepo{db: db, log: log}
}

func (r *documentRunRepo) Start(ctx context.Context, runID, name, sourcePath string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO document_runs (id, run_id, name, source_path, state, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		id.String(), runID, name, sourcePath, string(constants.DocStateDiscovered), time.Now().UTC())
	if err != nil {
		r.log.Error("document_run start failed", "name", name, "err", err)
		return uuid.Nil, common.NewAppError("DB_ERROR", "start document run", errors.Join(common.ErrDatabase, err))
	}
	r.log.Debug("document_run started", "id", id, "run_id", runID, "name", name)
	return id, nil
}

func (r *documentRunRepo) Transition(ctx context.Context, id uuid.UUID, state constants.DocState, docType constants.DocumentType) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`
		UPDATE document_runs SET state = ?, doc_type = ? WHERE id = ?`),
		string(state), string(docType), id.String())
	if err != nil {
		r.log.Error("document_run transition failed", "id", id, "state", state, "err", err)
		return common.NewAppError("DB_ERROR", "transition document run", errors.Join(common.ErrDatabase, err))
	}
	return mustAffect(res, id)
}

func (r *documentRunRepo) Finish(ctx context.Context, id uuid.UUID, state constants.DocState, records int, errMsg *string) error {
	if !state.Terminal() {
		return common.NewAppError("INVALID_STATE", fmt.Sprintf("%s is not terminal", state), common.ErrInvalidInput)
	}
	var msg sql.NullString
	if errMsg != nil {
		msg = sql.NullString{String: *errMsg, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, r.db.rebind(`
		UPDATE document_runs SET state = ?, record_count = ?, finished_at = ?, error_message = ? WHERE id = ?`),
		string(state), records, time.Now().UTC(), msg, id.String())
	if err != nil {
		r.log.Error("document_run finish failed", "id", id, "err", err)
		return common.NewAppError("DB_ERROR", "finish document run", errors.Join(common.ErrDatabase, err))
	}
	if state == constants.DocStateSkipped {
		r.log.Debug("document_run finished (SKIPPED)", "id", id, "error", msg.String)
	}
	return mustAffect(res, id)
}

func (r *documentRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.DocumentRun, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(selectRuns+` WHERE id = ?`), id.String())
	dr, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "document run "+id.String(), common.ErrNotFound)
	}
	return dr, err
}

func (r *documentRunRepo) ListByRun(ctx context.Context, runID string) ([]*entity.DocumentRun, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(selectRuns+` WHERE run_id = ? ORDER BY started_at, name`), runID)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list document runs", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*entity.DocumentRun
	for rows.Next() {
		dr, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

const selectRuns = `SELECT id, run_id, name, source_path, doc_type, state, record_count, started_at, finished_at, error_message FROM document_runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*entity.DocumentRun, error) {
	var (
		dr       entity.DocumentRun
		id       string
		docType  string
		state    string
		finished sql.NullTime
		msg      sql.NullString
	)
	if err := s.Scan(&id, &dr.RunID, &dr.Name, &dr.SourcePath, &docType, &state, &dr.RecordCount, &dr.StartedAt, &finished, &msg); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bad id %q: %w", id, err)
	}
	dr.ID = parsed
	dr.Type = constants.DocumentType(docType)
	dr.State = constants.DocState(state)
	if finished.Valid {
		t := finished.Time
		dr.FinishedAt = &t
	}
	if msg.Valid {
		m := msg.String
		dr.ErrorMessage = &m
	}
	return &dr, nil
}

func mustAffect(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.NewAppError("NOT_FOUND", "document run "+id.String(), common.ErrNotFound)
	}
	return nil
}
