package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/santiagocaneppa/Interview-project/internal/common"
)

// ErrOCRFailed marks a poppler or tesseract invocation that did not complete.
var ErrOCRFailed = errors.New("ocr command failed")

// stderrLimit bounds how much of a tool's stderr is kept for errors and logs.
const stderrLimit = 4 << 10

// Runner executes an external tool and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandError is a failed tool run. Stderr holds the tail of the tool's output.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int // -1 when the process never exited on its own
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited %d: %v", e.Name, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s exited %d: %s", e.Name, e.ExitCode, e.Stderr)
}

func (e *CommandError) Unwrap() []error { return []error{ErrOCRFailed, e.Err} }

// ExecRunner runs binaries on the host. The run and request ids found on ctx are
// attached to its log lines.
type ExecRunner struct {
	Logger *slog.Logger
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := common.LoggerFrom(ctx, r.Logger).With("cmd", name)
	start := time.Now()

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: stderrLimit}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		cerr := &CommandError{Name: name, Args: args, ExitCode: -1, Stderr: stderr.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cerr.ExitCode = exitErr.ExitCode()
		}
		logger.Error("exec.failed",
			"args", strings.Join(args, " "),
			"exit_code", cerr.ExitCode,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"stderr", cerr.Stderr,
			"stderr_dropped", stderr.dropped,
		)
		return nil, common.NewAppError("OCR_FAILED", name, cerr)
	}

	logger.Debug("exec.ok",
		"args", strings.Join(args, " "),
		"elapsed_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", stdout.Len(),
	)
	return stdout.Bytes(), nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit   int
	buf     []byte
	dropped int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.dropped += over
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return n, nil
}

// String returns the kept bytes starting at a rune boundary.
func (t *tailBuffer) String() string {
	b := t.buf
	for len(b) > 0 && !utf8.RuneStart(b[0]) {
		b = b[1:]
	}
	return strings.TrimSpace(string(b))
}
