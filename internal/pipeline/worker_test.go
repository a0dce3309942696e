package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/mdblocks/internal/blocks"
	"github.com/dgallion1/mdblocks/internal/mdast"
	"github.com/dgallion1/mdblocks/internal/render"
	"github.com/dgallion1/mdblocks/internal/source"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConverter() *Converter {
	return NewConverter(render.New(nil, testLogger()), source.Options{})
}

// foreign satisfies mdast.Node without being a kind the renderer knows.
type foreign struct{ *mdast.RawText }

func TestConverter_Convert(t *testing.T) {
	data := []byte("---\ntitle: Guide\n---\n# Hi\n\n###### Deep\n")
	conv, err := testConverter().Convert("guide.md", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.Title != "Guide" {
		t.Errorf("expected title %q, got %q", "Guide", conv.Title)
	}
	if conv.DocID != ContentHashHex(data) {
		t.Errorf("expected content hash doc ID, got %q", conv.DocID)
	}
	if len(conv.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(conv.Blocks))
	}
	if conv.Blocks[1].Kind != blocks.KindSubsubheader {
		t.Errorf("expected clamped heading, got %q", conv.Blocks[1].Kind)
	}
	if len(conv.Warnings) != 1 || conv.Warnings[0].Type != render.WarningHeadingClamped {
		t.Errorf("expected one heading warning, got %+v", conv.Warnings)
	}
	if conv.Meta["title"] != "Guide" {
		t.Errorf("expected front matter in meta, got %v", conv.Meta)
	}
}

func TestConverter_UnsupportedExtension(t *testing.T) {
	if _, err := testConverter().Convert("photo.png", []byte("x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestConverter_RenderUnknownNode(t *testing.T) {
	doc := &source.Document{Root: &mdast.Document{Children: []mdast.Node{foreign{mdast.Raw("x")}}}}
	_, err := testConverter().Render("id", doc)
	if !errors.Is(err, render.ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestWorker_ProcessSuccess(t *testing.T) {
	job := NewJob("notes.txt", []byte("one\n\ntwo"))
	NewWorker(testConverter(), testLogger()).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	res, ok := job.Result()
	if !ok {
		t.Fatal("expected result")
	}
	if len(res.Blocks) != 2 || res.Blocks[0].Title != "one" || res.Blocks[1].Title != "two" {
		t.Errorf("unexpected blocks: %+v", res.Blocks)
	}
	if snap.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", snap.Title)
	}
}

func TestWorker_ProcessFailures(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		filename string
		data     string
		phase    string
	}{
		{"unsupported", context.Background(), "image.png", "x", "parsing"},
		{"bad docx", context.Background(), "bad.docx", "not a zip", "parsing"},
		{"canceled", canceled, "a.md", "# A", "canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob(tt.filename, []byte(tt.data))
			NewWorker(testConverter(), testLogger()).Process(tt.ctx, job)
			snap := job.Snapshot()
			if snap.Status != StatusFailed {
				t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
			}
			if snap.Phase != tt.phase {
				t.Errorf("expected phase %q, got %q", tt.phase, snap.Phase)
			}
			if len(snap.Progress.Errors) == 0 {
				t.Error("expected an error to be recorded")
			}
			if _, ok := job.Result(); ok {
				t.Error("expected no result for failed job")
			}
		})
	}
}
