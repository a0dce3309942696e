package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/mdblocks/internal/render"
	"github.com/dgallion1/mdblocks/internal/source"
)

// Converter parses uploads and renders them to blocks. It is shared by the
// synchronous API path and the job workers.
type Converter struct {
	renderer *render.Renderer
	opts     source.Options
	latency  *Latency
}

func NewConverter(renderer *render.Renderer, opts source.Options) *Converter {
	return &Converter{renderer: renderer, opts: opts, latency: NewLatency(time.Hour)}
}

// Latency returns the rolling per-phase timings of successful conversions.
func (c *Converter) Latency() *Latency {
	return c.latency
}

// Renderer returns the renderer used for conversions.
func (c *Converter) Renderer() *render.Renderer {
	return c.renderer
}

// Parse picks a parser by filename and builds the document tree.
func (c *Converter) Parse(filename string, data []byte) (*source.Document, error) {
	p, err := source.ForFile(filename, c.opts)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	c.latency.Observe(PhaseParse, time.Since(start))
	return doc, nil
}

// Render turns a parsed document into a Conversion.
func (c *Converter) Render(docID string, doc *source.Document) (*Conversion, error) {
	start := time.Now()
	res, err := c.renderer.Render(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	c.latency.Observe(PhaseRender, time.Since(start))
	return &Conversion{
		DocID:    docID,
		Title:    doc.Title,
		Blocks:   res.Blocks,
		Warnings: res.Warnings,
		Meta:     doc.Meta,
	}, nil
}

// Convert parses and renders an upload in one step.
func (c *Converter) Convert(filename string, data []byte) (*Conversion, error) {
	doc, err := c.Parse(filename, data)
	if err != nil {
		return nil, err
	}
	return c.Render(ContentHashHex(data), doc)
}

// Worker processes a single document job.
type Worker struct {
	conv *Converter
	log  *slog.Logger
}

func NewWorker(conv *Converter, log *slog.Logger) *Worker {
	return &Worker{conv: conv, log: log}
}

// Process runs the parse and render phases for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := w.conv.Parse(job.Filename, job.FileData())
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Render
	job.SetStatus(StatusRendering, "rendering")
	conv, err := w.conv.Render(job.DocID, doc)
	if err != nil {
		if errors.Is(err, render.ErrUnknownNode) {
			log.Error("document tree has unhandled node", "error", err)
		} else {
			log.Error("render failed", "error", err)
		}
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	job.Complete(conv)
	log.Info("conversion complete", "blocks", len(conv.Blocks), "warnings", len(conv.Warnings))
}
