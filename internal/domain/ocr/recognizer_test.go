package ocr

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls   [][]string
	outputs []string
	err     error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	out := f.outputs[0]
	if len(f.outputs) > 1 {
		f.outputs = f.outputs[1:]
	}
	return []byte(out), nil, nil
}

func newTestRecognizer(runner Runner) *TesseractRecognizer {
	return NewTesseractRecognizer(Config{}, slog.Default()).WithRunner(runner)
}

func TestTesseractRecognizer_Recognize(t *testing.T) {
	t.Run("single pass when text is long enough", func(t *testing.T) {
		long := "Corner Market\nMilk 2L 3.99\nBread 2.50\nTOTAL 6.49\n"
		runner := &fakeRunner{outputs: []string{long}}

		text, err := newTestRecognizer(runner).Recognize(context.Background(), "receipt.png")
		require.NoError(t, err)
		assert.Equal(t, long, text)

		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{"tesseract", "receipt.png", "stdout", "-l", "eng", "--psm", "6"}, runner.calls[0])
	})

	t.Run("short text retries with automatic segmentation", func(t *testing.T) {
		long := "Corner Market\nMilk 2L 3.99\nBread 2.50\nTOTAL 6.49\n"
		runner := &fakeRunner{outputs: []string{"??", long}}

		text, err := newTestRecognizer(runner).Recognize(context.Background(), "receipt.png")
		require.NoError(t, err)
		assert.Equal(t, long, text)

		require.Len(t, runner.calls, 2)
		assert.Equal(t, "3", runner.calls[1][len(runner.calls[1])-1])
	})

	t.Run("keeps first result when retry is no better", func(t *testing.T) {
		runner := &fakeRunner{outputs: []string{"short one", ""}}

		text, err := newTestRecognizer(runner).Recognize(context.Background(), "receipt.png")
		require.NoError(t, err)
		assert.Equal(t, "short one", text)
	})

	t.Run("command failure surfaces with stderr", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("exit status 1")}

		_, err := newTestRecognizer(runner).Recognize(context.Background(), "receipt.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tesseract")
		assert.Contains(t, err.Error(), "boom")
	})
}
