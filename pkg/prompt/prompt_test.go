package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

// scriptReader replays canned answers, then the given terminal error.
type scriptReader struct {
	answers []string
	end     error
	prompts []string
}

func (s *scriptReader) SetPrompt(p string) { s.prompts = append(s.prompts, p) }
func (s *scriptReader) Close() error       { return nil }

func (s *scriptReader) Readline() (string, error) {
	if len(s.answers) == 0 {
		return "", s.end
	}
	line := s.answers[0]
	s.answers = s.answers[1:]
	return line, nil
}

var demo = spec.MustNew(
	spec.Field{Key: "workspace_dir", Name: "Workspace", Type: spec.TypeDirectory, Required: spec.Required()},
	spec.Field{Key: "resolution", Type: spec.TypeNumber, Required: spec.Required(), About: "Cell size in metres."},
	spec.Field{Key: "decay_eq", Type: spec.TypeOptionString, ValidationOptions: spec.Options{"options": []any{"None", "Linear"}}},
	spec.Field{Key: "raster", Type: spec.TypeRaster, Required: spec.DependsOn("decay_eq")},
)

func TestFill(t *testing.T) {
	r := &scriptReader{answers: []string{" 30 ", "", "dem.tif"}, end: io.EOF}
	var out bytes.Buffer
	args := map[string]any{"workspace_dir": "/tmp/ws"}

	got, err := NewWithReader(r, &out).Fill(context.Background(), demo, args)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"workspace_dir": "/tmp/ws", "resolution": "30", "raster": "dem.tif"}, got)
	assert.Equal(t, map[string]any{"workspace_dir": "/tmp/ws"}, args)
	assert.Equal(t, []string{"resolution> ", "decay_eq> ", "raster> "}, r.prompts)

	text := out.String()
	assert.Contains(t, text, "resolution [number, required]\n  Cell size in metres.")
	assert.Contains(t, text, "decay_eq [option_string] one of: None, Linear")
	assert.Contains(t, text, "raster [raster, required with decay_eq]")
	assert.NotContains(t, text, "workspace_dir")
}

func TestFill_EOFStopsEarly(t *testing.T) {
	r := &scriptReader{answers: []string{"/data"}, end: io.EOF}
	got, err := NewWithReader(r, io.Discard).Fill(context.Background(), demo, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"workspace_dir": "/data"}, got)
}

func TestFill_Interrupt(t *testing.T) {
	r := &scriptReader{end: readline.ErrInterrupt}
	_, err := NewWithReader(r, io.Discard).Fill(context.Background(), demo, nil)
	assert.ErrorIs(t, err, ErrAborted)
}

func TestFill_ReadError(t *testing.T) {
	boom := errors.New("tty gone")
	r := &scriptReader{end: boom}
	_, err := NewWithReader(r, io.Discard).Fill(context.Background(), demo, nil)
	assert.ErrorIs(t, err, boom)
}

func TestFill_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewWithReader(&scriptReader{end: io.EOF}, io.Discard).Fill(ctx, demo, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
