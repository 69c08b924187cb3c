package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formplugin/pkg/renderers/tui"
	"github.com/goliatone/go-formplugin/pkg/testsupport"
)

func run(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	if stdin != nil {
		root.SetIn(bytes.NewReader(stdin))
	}
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, testsupport.MustFixture(t, name), 0o644))
	return path
}

func TestRenderJSON(t *testing.T) {
	stdout, stderr, err := run(t, nil, "render", "--renderer", "json", writeFixture(t, testsupport.OpenMinimal))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc), stdout)
	assert.Equal(t, "rendered", doc["state"])
	assert.Contains(t, stderr, `{"apiVersion":1,"method":"ready"}`)
}

func TestRenderTUIFromStdin(t *testing.T) {
	stdout, _, err := run(t, testsupport.MustFixture(t, testsupport.OpenActivity), "render", "-r", "tui", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "astatus: Started")
}

func TestRenderErrors(t *testing.T) {
	_, _, err := run(t, nil, "render", "-r", "pdf", writeFixture(t, testsupport.OpenMinimal))
	assert.Error(t, err)

	_, _, err = run(t, []byte(`{"method":"nope"}`), "render", "-")
	assert.Error(t, err)

	_, _, err = run(t, nil, "render", filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

type scriptedDriver struct {
	inputs    []string
	selects   []int
	confirm   []bool
	textareas []string
}

func (d *scriptedDriver) Input(_ context.Context, _ tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, _ tui.ConfirmConfig) (bool, error) {
	if len(d.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	v := d.confirm[0]
	d.confirm = d.confirm[1:]
	return v, nil
}

func (d *scriptedDriver) Select(_ context.Context, _ tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}

func (d *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	if len(d.textareas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	v := d.textareas[0]
	d.textareas = d.textareas[1:]
	return v, nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func useDriver(t *testing.T, driver tui.PromptDriver) {
	t.Helper()
	prev := newEditorFunc
	newEditorFunc = func(options ...tui.Option) *tui.Editor {
		return tui.NewEditor(append(options, tui.WithPromptDriver(driver))...)
	}
	t.Cleanup(func() { newEditorFunc = prev })
}

func TestEditPrintsCloseMessage(t *testing.T) {
	useDriver(t, &scriptedDriver{
		inputs:  []string{"5", "1"},
		selects: []int{1, 0},
		confirm: []bool{true},
	})

	stdout, stderr, err := run(t, nil, "edit", writeFixture(t, testsupport.OpenMinimal))
	require.NoError(t, err)

	assert.Equal(t,
		`{"apiVersion":1,"method":"close","backScreen":"default","activity":{"aid":"1","astatus":"complete"}}`+"\n",
		stdout)
	assert.Contains(t, stderr, "astatus: Started")
	assert.Contains(t, stderr, `"method":"ready"`)
}

func TestEditRawResponse(t *testing.T) {
	useDriver(t, &scriptedDriver{
		inputs:    []string{"5", "1"},
		selects:   []int{0, 0},
		confirm:   []bool{true},
		textareas: []string{`{"apiVersion":1,"method":"close","backScreen":"activity_list"}`},
	})

	stdout, _, err := run(t, nil, "edit", "--raw-response", writeFixture(t, testsupport.OpenMinimal))
	require.NoError(t, err)
	assert.Equal(t, `{"apiVersion":1,"method":"close","backScreen":"activity_list"}`+"\n", stdout)
}

func TestEditAborted(t *testing.T) {
	useDriver(t, abortingDriver{&scriptedDriver{}})

	stdout, stderr, err := run(t, nil, "edit", writeFixture(t, testsupport.OpenMinimal))
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "aborted")
}

type abortingDriver struct{ *scriptedDriver }

func (abortingDriver) Input(context.Context, tui.InputConfig) (string, error) {
	return "", tui.ErrAborted
}

func TestDictionaryShowAndCheck(t *testing.T) {
	stdout, _, err := run(t, nil, "dictionary", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "signature_field:")

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(stdout), 0o644))

	out, _, err := run(t, nil, "dictionary", "check", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, path+": ok"), out)

	require.NoError(t, os.WriteFile(path, []byte("enums: [broken"), 0o644))
	_, _, err = run(t, nil, "dictionary", "check", path)
	assert.Error(t, err)
}

func TestConfigInitAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formplugin.yaml")

	out, _, err := run(t, nil, "config", "init", path)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+path+"\n", out)

	out, _, err = run(t, nil, "--config", path, "config", "check")
	require.NoError(t, err)
	assert.Equal(t, "addr :8080, storage memory, 4 back screens\n", out)
}
