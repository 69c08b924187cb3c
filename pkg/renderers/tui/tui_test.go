package tui_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-formplugin/pkg/gateway"
	"github.com/goliatone/go-formplugin/pkg/plugin"
	"github.com/goliatone/go-formplugin/pkg/render"
	"github.com/goliatone/go-formplugin/pkg/renderers/tui"
	"github.com/goliatone/go-formplugin/pkg/testsupport"
)

type stubDriver struct {
	inputs     []string
	selectIdx  []int
	confirm    []bool
	textareas  []string
	inputPos   int
	selectPos  int
	confirmPos int

	prompts []string
	infos   []string
}

func (s *stubDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	s.prompts = append(s.prompts, "input:"+cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, "confirm:"+cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	s.prompts = append(s.prompts, "select:"+cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, "textarea:"+cfg.Message)
	if len(s.textareas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	val := s.textareas[0]
	s.textareas = s.textareas[1:]
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func openPlugin(t *testing.T, fixture string) (*plugin.Plugin, *testsupport.RecordingPoster) {
	t.Helper()

	poster := &testsupport.RecordingPoster{}
	p := plugin.New(poster, plugin.WithGatewayOptions(gateway.WithReferrer("https://host.example/app")))
	ctx := context.Background()
	if err := p.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	outcome := p.Receive(ctx, gateway.Event{Data: testsupport.MustFixture(t, fixture)})
	if outcome != gateway.OutcomeDispatched {
		t.Fatalf("open outcome = %s", outcome)
	}
	return p, poster
}

func TestRenderer_Outline(t *testing.T) {
	p, _ := openPlugin(t, testsupport.OpenMinimal)
	if err := p.Select([]string{"activity", "astatus"}, "complete"); err != nil {
		t.Fatalf("select: %v", err)
	}

	out, err := tui.New().Render(context.Background(), p.View(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"*data\n",
		"  apiVersion: 1 (ro)\n",
		"  *activity\n",
		"    astatus: Completed\n",
		"Back screen: default\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("outline missing %q:\n%s", want, text)
		}
	}
}

func TestRenderer_Waiting(t *testing.T) {
	out, err := tui.New().Render(context.Background(), render.View{Alerts: []string{"Unknown method"}}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "! Unknown method\nWaiting for data from host\n" {
		t.Fatalf("got %q", out)
	}
}

func TestEditor_EditAndSubmit(t *testing.T) {
	p, poster := openPlugin(t, testsupport.OpenMinimal)

	driver := &stubDriver{
		// entity.id and activity.aid keep their values.
		inputs:    []string{"5", "1"},
		selectIdx: []int{1, 0},
		confirm:   []bool{true},
	}
	submitted, err := tui.NewEditor(tui.WithPromptDriver(driver)).Edit(context.Background(), p)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !submitted {
		t.Fatalf("expected submission")
	}
	if p.State() != plugin.StateClosed {
		t.Fatalf("state = %s", p.State())
	}

	frames := poster.Frames()
	last := frames[len(frames)-1]
	want := `{"apiVersion":1,"method":"close","backScreen":"default","activity":{"aid":"1","astatus":"complete"}}`
	if last != want {
		t.Fatalf("close message\n got %s\nwant %s", last, want)
	}
	if driver.prompts[0] != "input:entity.id" {
		t.Fatalf("prompts = %v", driver.prompts)
	}
}

func TestEditor_BackActivityAndSignature(t *testing.T) {
	p, poster := openPlugin(t, testsupport.OpenActivity)

	driver := &stubDriver{
		// entity.id, resource.note, aid, WO_COMMENTS, caddress, invid, back activity id.
		inputs:    []string{"5", "n", "4225274", "text_comments", "text_address", "9", "77"},
		selectIdx: []int{0, 0, 1},
		confirm:   []bool{true, true},
	}
	if _, err := tui.NewEditor(tui.WithPromptDriver(driver)).Edit(context.Background(), p); err != nil {
		t.Fatalf("edit: %v", err)
	}

	frames := poster.Frames()
	last := frames[len(frames)-1]
	for _, want := range []string{
		`"backScreen":"activity_by_id"`,
		`"backActivityId":"77"`,
		`"csign":"data:image/png;base64,`,
	} {
		if !strings.Contains(last, want) {
			t.Errorf("close message missing %q: %s", want, last)
		}
	}
}

func TestEditor_RequiresForm(t *testing.T) {
	p := plugin.New(&testsupport.RecordingPoster{})
	if _, err := tui.NewEditor(tui.WithPromptDriver(&stubDriver{})).Edit(context.Background(), p); !errors.Is(err, tui.ErrNoForm) {
		t.Fatalf("expected ErrNoForm, got %v", err)
	}
}

func TestEditor_RawResponseRetriesUntilValid(t *testing.T) {
	p, poster := openPlugin(t, testsupport.OpenMinimal)
	p.Receive(context.Background(), gateway.Event{Data: []byte(`{"method":"bogus"}`)})

	driver := &stubDriver{
		inputs:    []string{"5", "1"},
		selectIdx: []int{0, 0},
		confirm:   []bool{true},
		textareas: []string{
			"{not json",
			`{"apiVersion":1,"method":"close","backScreen":"next_activity"}`,
		},
	}
	editor := tui.NewEditor(tui.WithPromptDriver(driver), tui.WithRawResponse(true))
	submitted, err := editor.Edit(context.Background(), p)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !submitted {
		t.Fatalf("expected submission")
	}

	wantInfos := []string{"! Unknown method", "! JSON parse error!"}
	if strings.Join(driver.infos, "|") != strings.Join(wantInfos, "|") {
		t.Fatalf("infos = %v, want %v", driver.infos, wantInfos)
	}
	frames := poster.Frames()
	last := frames[len(frames)-1]
	if last != `{"apiVersion":1,"method":"close","backScreen":"next_activity"}` {
		t.Fatalf("close message = %s", last)
	}
	if p.State() != plugin.StateClosed {
		t.Fatalf("state = %s", p.State())
	}
}
