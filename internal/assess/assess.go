// Package assess runs the rate-limited assessment phase: each PDF is
// matched back to a stored record, screened for relevance, and, if it
// passes, categorized and summarized through four sequential engine calls.
//
// Documents are processed strictly one at a time. A single injected
// rate.Limiter paces every outbound call, so throughput is governed in one
// place regardless of how many documents a run covers. Every per-document
// outcome is persisted; only losing the store or the caller's context stops
// a run.
package assess

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/refmine/refmine/internal/citation"
	"github.com/refmine/refmine/internal/match"
	"github.com/refmine/refmine/internal/pdfmeta"
	"github.com/refmine/refmine/internal/store"
)

// Per-document outcomes reported to the caller. Store statuses are a
// subset; "unmatched" and "already_assessed" never reach the store because
// the first has no record to attach to and the second already has one.
const (
	OutcomeAssessed        = citation.StatusAssessed
	OutcomeNotApplicable   = citation.StatusNotApplicable
	OutcomeSkipped         = citation.StatusSkipped
	OutcomeError           = citation.StatusError
	OutcomeUnmatched       = "unmatched"
	OutcomeAlreadyAssessed = "already_assessed"
)

// DefaultMaxPages is the structural precheck threshold: anything longer is
// a thesis or proceedings volume, not a paper, and is skipped unread.
const DefaultMaxPages = 50

// DocResult reports what happened to one document.
type DocResult struct {
	Path    string
	PaperID int64
	Outcome string
	Err     error
}

// Orchestrator drives the assessment state machine over a batch of
// documents.
type Orchestrator struct {
	store    store.Store
	client   Client
	limiter  *rate.Limiter
	matcher  *match.Matcher
	maxPages int

	// Extraction hooks, overridable in tests so no real PDFs are needed.
	extract   func(path string) pdfmeta.Metadata
	pageCount func(path string) (int, error)
	text      func(path string, maxPages int) (string, error)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxPages overrides the structural precheck threshold.
func WithMaxPages(n int) Option {
	return func(o *Orchestrator) { o.maxPages = n }
}

// NewLimiter builds the pacing clock for a given request budget.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// New creates an orchestrator over the given store, engine client, and
// pacing clock.
func New(s store.Store, c Client, limiter *rate.Limiter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     s,
		client:    c,
		limiter:   limiter,
		matcher:   match.New(s),
		maxPages:  DefaultMaxPages,
		extract:   pdfmeta.Extract,
		pageCount: pdfmeta.PageCount,
		text:      pdfmeta.Text,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AssessDocument runs the full state machine for one PDF. The returned
// result always has an Outcome; Err is set alongside OutcomeError.
//
// A context error aborts immediately and nothing further is persisted for
// the document.
func (o *Orchestrator) AssessDocument(ctx context.Context, path string) DocResult {
	res := DocResult{Path: path}

	meta := o.extract(path)
	id, ok := o.matcher.Match(ctx, meta.DOI, meta.Title)
	if !ok {
		slog.Warn("document matched no stored record", "path", path, "doi", meta.DOI, "title", meta.Title)
		res.Outcome = OutcomeUnmatched
		return res
	}
	res.PaperID = id

	if prev, err := o.store.GetAssessment(ctx, id); err == nil {
		slog.Info("assessment already recorded", "path", path, "paper_id", id, "status", prev.Status)
		res.Outcome = OutcomeAlreadyAssessed
		return res
	} else if !store.IsNotFound(err) {
		res.Outcome = OutcomeError
		res.Err = fmt.Errorf("checking previous assessment: %w", err)
		return res
	}

	pages, err := o.pageCount(path)
	if err != nil {
		return o.recordError(ctx, res, fmt.Errorf("counting pages: %w", err))
	}
	if pages > o.maxPages {
		slog.Info("document over page limit, skipping", "path", path, "pages", pages, "limit", o.maxPages)
		res.Outcome = OutcomeSkipped
		res.Err = o.persist(ctx, citation.Assessment{PaperID: id, Status: citation.StatusSkipped})
		return res
	}

	content, err := o.text(path, 0)
	if err != nil || content == "" {
		if err == nil {
			err = fmt.Errorf("no extractable text")
		}
		return o.recordError(ctx, res, fmt.Errorf("extracting text: %w", err))
	}

	screenRaw, err := o.call(ctx, screenInstructions, content)
	if err != nil {
		if ctx.Err() != nil {
			res.Outcome = OutcomeError
			res.Err = err
			return res
		}
		return o.recordError(ctx, res, fmt.Errorf("screening call: %w", err))
	}
	screen, err := parseScreen(screenRaw)
	if err != nil {
		slog.Warn("unparseable screen response, using default", "paper_id", id, "err", err)
		screen = DefaultScreen
	}

	if !screen.Relevant {
		res.Outcome = OutcomeNotApplicable
		res.Err = o.persist(ctx, citation.Assessment{
			PaperID:     id,
			Status:      citation.StatusNotApplicable,
			Relevant:    screen.Relevant,
			Significant: screen.Significant,
		})
		return res
	}

	category := o.fetchCategory(ctx, id, content)
	summary := o.fetchText(ctx, id, content, summaryInstructions, "summary", DefaultSummary)
	takeaways := o.fetchText(ctx, id, content, takeawaysInstructions, "takeaways", DefaultTakeaways)

	res.Outcome = OutcomeAssessed
	res.Err = o.persist(ctx, citation.Assessment{
		PaperID:     id,
		Status:      citation.StatusAssessed,
		Relevant:    screen.Relevant,
		Significant: screen.Significant,
		Category:    category,
		Summary:     summary,
		Takeaways:   takeaways,
	})
	return res
}

// call waits on the pacing clock and sends one prompt.
func (o *Orchestrator) call(ctx context.Context, instructions, content string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return o.client.Complete(ctx, systemPrompt, buildPrompt(instructions, content))
}

// fetchCategory runs the category call. Any failure, transport or parse,
// degrades to the default so the other fields still land.
func (o *Orchestrator) fetchCategory(ctx context.Context, id int64, content string) string {
	raw, err := o.call(ctx, categoryInstructions, content)
	if err == nil {
		var cat string
		if cat, err = parseCategory(raw); err == nil {
			return cat
		}
	}
	slog.Warn("category call failed, using default", "paper_id", id, "err", err)
	return DefaultCategory
}

func (o *Orchestrator) fetchText(ctx context.Context, id int64, content, instructions, field, fallback string) string {
	raw, err := o.call(ctx, instructions, content)
	if err == nil {
		var text string
		if text, err = parseText(raw, field); err == nil {
			return text
		}
	}
	slog.Warn("call failed, using default", "field", field, "paper_id", id, "err", err)
	return fallback
}

// recordError persists an error status for the document and reports it.
func (o *Orchestrator) recordError(ctx context.Context, res DocResult, cause error) DocResult {
	res.Outcome = OutcomeError
	res.Err = cause
	if err := o.persist(ctx, citation.Assessment{PaperID: res.PaperID, Status: citation.StatusError}); err != nil {
		res.Err = fmt.Errorf("%w (recording error status: %v)", cause, err)
	}
	return res
}

func (o *Orchestrator) persist(ctx context.Context, a citation.Assessment) error {
	a.AssessedAt = time.Now().UTC()
	if err := o.store.UpsertAssessment(ctx, a); err != nil {
		return fmt.Errorf("saving assessment for paper %d: %w", a.PaperID, err)
	}
	return nil
}
