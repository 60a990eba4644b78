package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		r.logger.Error("exec failed",
			slog.String("cmd", name),
			slog.String("args", strings.Join(args, " ")),
			slog.Int64("duration_ms", dur.Milliseconds()),
			slog.Any("error", err),
			slog.String("stderr", truncate(errb.String(), 8<<10)),
		)
	} else {
		r.logger.Debug("exec ok",
			slog.String("cmd", name),
			slog.Int64("duration_ms", dur.Milliseconds()),
			slog.Int("stdout_bytes", out.Len()),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
