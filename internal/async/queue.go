package async

import (
	"context"
	"time"
)

// Job is one document waiting to be processed.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

// Handler processes one job.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
