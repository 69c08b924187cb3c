package widget_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formplugin/pkg/widget"
)

func sampleTree() (*widget.Item, *widget.Item, *widget.Item) {
	root := widget.NewCollection("data", 1)
	activity := widget.NewCollection("activity", 0)
	comments := widget.NewText("WO_COMMENTS", "text_comments", true)
	aid := widget.NewText("aid", "4225274", true)
	root.Append(widget.NewText("method", "open", false), activity)
	activity.Append(comments, aid)
	return root, activity, comments
}

func TestMarkEdited_PropagatesToAncestors(t *testing.T) {
	root, activity, comments := sampleTree()

	if err := comments.SetText("updated"); err != nil {
		t.Fatalf("set text: %v", err)
	}

	for _, item := range []*widget.Item{comments, activity, root} {
		if !item.Edited() {
			t.Fatalf("expected %q to be edited", item.Key)
		}
	}
	aid, _ := root.Lookup("activity", "aid")
	if aid.Edited() {
		t.Fatalf("sibling must not be marked edited")
	}
	if got := comments.Value(); got != "updated" {
		t.Fatalf("value = %q, want updated", got)
	}
}

func TestAppend_AssignsLevels(t *testing.T) {
	root, activity, comments := sampleTree()
	if activity.Level != 2 || comments.Level != 3 {
		t.Fatalf("levels = %d/%d, want 2/3", activity.Level, comments.Level)
	}
	if comments.ParentKey() != "activity" || root.ParentKey() != "" {
		t.Fatalf("unexpected parent keys %q %q", comments.ParentKey(), root.ParentKey())
	}
}

func TestSetText_RejectsReadOnlyAndWrongKind(t *testing.T) {
	root, _, _ := sampleTree()
	method, _ := root.Lookup("method")

	if err := method.SetText("close"); !errors.Is(err, widget.ErrNotWritable) {
		t.Fatalf("expected ErrNotWritable, got %v", err)
	}
	if method.Edited() || root.Edited() {
		t.Fatalf("rejected edit must not mark items")
	}

	choice := widget.NewChoice("astatus", "started", []widget.Option{{Value: "started"}}, false)
	if err := choice.SetText("x"); !errors.Is(err, widget.ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	options := []widget.Option{
		{Value: "started", Label: "Started"},
		{Value: "complete", Label: "Completed"},
	}

	enabled := widget.NewChoice("astatus", "started", options, false)
	if err := enabled.Select("pending"); !errors.Is(err, widget.ErrOptionNotAllowed) {
		t.Fatalf("expected ErrOptionNotAllowed, got %v", err)
	}
	if err := enabled.Select("complete"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if enabled.Value() != "complete" || !enabled.Edited() {
		t.Fatalf("select did not apply: %q edited=%v", enabled.Value(), enabled.Edited())
	}

	disabled := widget.NewChoice("astatus", "complete", options[1:], true)
	if err := disabled.Select("complete"); !errors.Is(err, widget.ErrNotWritable) {
		t.Fatalf("expected ErrNotWritable, got %v", err)
	}
}

func TestCapture_ConsumesSignature(t *testing.T) {
	parent := widget.NewCollection("data", 1)
	sig := widget.NewSignature("csign")
	parent.Append(sig)

	if sig.Value() != "" {
		t.Fatalf("untriggered signature must have no value")
	}
	if err := sig.Capture("data:image/png;base64,AAAA"); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if sig.Kind != widget.KindCanvas {
		t.Fatalf("kind = %s, want canvas", sig.Kind)
	}
	if !sig.Edited() || !parent.Edited() {
		t.Fatalf("capture must mark item and parent edited")
	}
	if got := sig.Value(); got != "data:image/png;base64,AAAA" {
		t.Fatalf("value = %q", got)
	}
	if err := sig.Capture("data:image/png;base64,BBBB"); !errors.Is(err, widget.ErrSignatureConsumed) {
		t.Fatalf("expected ErrSignatureConsumed, got %v", err)
	}
}

func TestClone_IsDetached(t *testing.T) {
	root, _, comments := sampleTree()
	if err := comments.SetText("edited"); err != nil {
		t.Fatalf("set text: %v", err)
	}

	clone := root.Clone()
	copied, ok := clone.Lookup("activity", "WO_COMMENTS")
	if !ok || !copied.Edited() || copied.Value() != "edited" {
		t.Fatalf("clone lost state: %+v", copied)
	}
	if copied.Parent() == comments.Parent() {
		t.Fatalf("clone must not share parents")
	}

	aid, _ := clone.Lookup("activity", "aid")
	if err := aid.SetText("changed"); err != nil {
		t.Fatalf("set text: %v", err)
	}
	original, _ := root.Lookup("activity", "aid")
	if original.Value() != "4225274" || original.Edited() {
		t.Fatalf("editing the clone changed the source")
	}
}

func TestWalkAndPath(t *testing.T) {
	root, _, _ := sampleTree()

	var paths [][]string
	err := root.Walk(func(item *widget.Item) error {
		if !item.IsContainer() {
			paths = append(paths, item.Path())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	want := [][]string{
		{"method"},
		{"activity", "WO_COMMENTS"},
		{"activity", "aid"},
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	if _, ok := root.Lookup("activity", "missing"); ok {
		t.Fatalf("expected lookup miss")
	}
}
