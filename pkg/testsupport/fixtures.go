package testsupport

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/goliatone/go-formplugin/pkg/record"
)

//go:embed testdata/*.json
var fixtures embed.FS

// Fixture names shipped with the package.
const (
	OpenActivity = "open_activity.json"
	OpenMinimal  = "open_minimal.json"
)

// FixtureBytes returns an embedded fixture without requiring testing.T.
func FixtureBytes(name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("testsupport: fixture name is required")
	}
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	return data, nil
}

// MustFixture returns the raw bytes of an embedded fixture.
func MustFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := FixtureBytes(name)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return data
}

// MustRecord decodes an embedded fixture into an ordered record.
func MustRecord(t *testing.T, name string) *record.Record {
	t.Helper()
	return MustDecode(t, string(MustFixture(t, name)))
}

// MustDecode decodes inline JSON into an ordered record.
func MustDecode(t *testing.T, text string) *record.Record {
	t.Helper()

	rec, err := record.Decode([]byte(text))
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return rec
}

// RecordingPoster captures every frame posted to the host.
type RecordingPoster struct {
	mu      sync.Mutex
	frames  []string
	origins []string
}

// PostMessage implements gateway.Poster.
func (r *RecordingPoster) PostMessage(_ context.Context, data []byte, targetOrigin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, string(data))
	r.origins = append(r.origins, targetOrigin)
	return nil
}

// Frames returns a copy of the posted payloads in order.
func (r *RecordingPoster) Frames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
}

// Origins returns the target origins used for each frame.
func (r *RecordingPoster) Origins() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.origins...)
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
