package report

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/contentaudit/pkg/audit"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/observability"
	"github.com/matzehuels/contentaudit/pkg/refgraph"
)

// State is a snapshot of the orchestrator. Only the list for Kind is
// ever non-empty.
type State struct {
	RunID        string          `json:"run_id,omitempty"`
	Kind         Kind            `json:"kind,omitempty"`
	Status       Status          `json:"status"`
	Generation   uint64          `json:"generation"`
	ContentType  string          `json:"content_type,omitempty"`
	Entries      []Item          `json:"entries,omitempty"`
	Assets       []Item          `json:"assets,omitempty"`
	ContentTypes []Item          `json:"content_types,omitempty"`
	Failures     []audit.Failure `json:"failures,omitempty"`
	Scanned      int             `json:"scanned"`
	Total        int             `json:"total"`
	Truncated    bool            `json:"truncated,omitempty"`
	HasGenerated bool            `json:"has_generated"`
	Error        string          `json:"error,omitempty"`
	StartedAt    time.Time       `json:"started_at,omitzero"`
	FinishedAt   time.Time       `json:"finished_at,omitzero"`

	Err   error           `json:"-"`
	Graph *refgraph.Graph `json:"-"`
}

// Items returns the item list of the current kind.
func (s *State) Items() []Item {
	switch s.Kind {
	case KindEntries:
		return s.Entries
	case KindMedia:
		return s.Assets
	case KindTypes:
		return s.ContentTypes
	}
	return nil
}

func (s *State) setItems(items []Item) {
	switch s.Kind {
	case KindEntries:
		s.Entries = items
	case KindMedia:
		s.Assets = items
	case KindTypes:
		s.ContentTypes = items
	}
}

func (s State) clone() State {
	s.Entries = slices.Clone(s.Entries)
	s.Assets = slices.Clone(s.Assets)
	s.ContentTypes = slices.Clone(s.ContentTypes)
	s.Failures = slices.Clone(s.Failures)
	return s
}

// Orchestrator owns the report state and selection of one session.
// It is safe for concurrent use.
type Orchestrator struct {
	detector Detector
	deleter  *Deleter
	logger   *log.Logger

	mu        sync.Mutex
	state     State
	sel       *Selection
	listeners []func(State)
}

// NewOrchestrator creates an idle orchestrator. deleter may be nil when
// deletion is not offered. A nil logger uses log.Default().
func NewOrchestrator(detector Detector, deleter *Deleter, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		detector: detector,
		deleter:  deleter,
		logger:   logger,
		state:    State{Status: StatusIdle},
		sel:      NewSelection(),
	}
}

// OnChange registers fn to receive a snapshot after every state change.
// Callbacks run outside the orchestrator lock, on the goroutine that made
// the change.
func (o *Orchestrator) OnChange(fn func(State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Start begins a report of kind: it bumps the generation, clears every
// item list and the selection, and marks the report loading. The returned
// token must be passed to Complete or Fail.
func (o *Orchestrator) Start(ctx context.Context, kind Kind, contentType string) uint64 {
	o.mu.Lock()
	gen := o.state.Generation + 1
	o.state = State{
		RunID:        uuid.NewString(),
		Kind:         kind,
		Status:       StatusLoading,
		Generation:   gen,
		ContentType:  contentType,
		HasGenerated: o.state.HasGenerated,
		StartedAt:    time.Now(),
	}
	o.sel.Clear()
	snap := o.state.clone()
	o.mu.Unlock()

	o.logger.Debug("report started", "kind", kind, "generation", gen, "run", snap.RunID)
	observability.Report().OnReportStart(ctx, string(kind), gen)
	o.notify(snap)
	return gen
}

// Complete stores res for generation gen. It reports false, and changes
// nothing, when a newer report has started since.
func (o *Orchestrator) Complete(ctx context.Context, gen uint64, res *Result) bool {
	o.mu.Lock()
	if gen != o.state.Generation {
		kind := o.state.Kind
		o.mu.Unlock()
		o.discarded(ctx, kind, gen)
		return false
	}
	s := &o.state
	s.Status = StatusReady
	s.setItems(slices.Clone(res.Items))
	s.Failures = slices.Clone(res.Failures)
	s.Scanned, s.Total, s.Truncated = res.Scanned, res.Total, res.Truncated
	s.Graph = res.Graph
	s.HasGenerated = true
	s.FinishedAt = time.Now()
	snap := s.clone()
	o.mu.Unlock()

	dur := snap.FinishedAt.Sub(snap.StartedAt)
	o.logger.Info("report ready", "kind", snap.Kind, "unused", len(res.Items), "failures", len(res.Failures), "duration", dur)
	observability.Report().OnReportComplete(ctx, string(snap.Kind), gen, len(res.Items), dur, nil)
	o.notify(snap)
	return true
}

// Fail records err for generation gen, leaving the report empty. Like
// Complete it ignores stale generations.
func (o *Orchestrator) Fail(ctx context.Context, gen uint64, err error) bool {
	o.mu.Lock()
	if gen != o.state.Generation {
		kind := o.state.Kind
		o.mu.Unlock()
		o.discarded(ctx, kind, gen)
		return false
	}
	s := &o.state
	s.Status = StatusError
	s.setItems(nil)
	s.Failures = nil
	s.Graph = nil
	s.Err = err
	s.Error = apperrors.UserMessage(err)
	s.HasGenerated = true
	s.FinishedAt = time.Now()
	snap := s.clone()
	o.mu.Unlock()

	dur := snap.FinishedAt.Sub(snap.StartedAt)
	o.logger.Error("report failed", "kind", snap.Kind, "err", err)
	observability.Report().OnReportComplete(ctx, string(snap.Kind), gen, 0, dur, err)
	o.notify(snap)
	return true
}

func (o *Orchestrator) discarded(ctx context.Context, kind Kind, gen uint64) {
	o.logger.Debug("discarded stale report", "kind", kind, "generation", gen)
	observability.Report().OnReportDiscarded(ctx, string(kind), gen)
}

// Generate runs a report of kind to completion and returns the resulting
// state. When a newer report started while this one ran, the returned
// state is the newer one's.
func (o *Orchestrator) Generate(ctx context.Context, kind Kind, contentType string) (State, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return State{}, err
	}
	gen := o.Start(ctx, kind, contentType)
	err := o.run(ctx, gen, kind, contentType)
	return o.State(), err
}

// Launch starts a report of kind and runs detection in the background. It
// returns the loading snapshot and a channel that is closed once the run
// has been applied or discarded.
func (o *Orchestrator) Launch(ctx context.Context, kind Kind, contentType string) (State, <-chan struct{}, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return State{}, nil, err
	}
	gen := o.Start(ctx, kind, contentType)
	st := o.State()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = o.run(ctx, gen, kind, contentType)
	}()
	return st, done, nil
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, kind Kind, contentType string) error {
	res, err := o.detector.Detect(ctx, kind, contentType)
	if err != nil {
		o.Fail(ctx, gen, err)
		return err
	}
	o.Complete(ctx, gen, res)
	return nil
}

// Page applies v to the current items.
func (o *Orchestrator) Page(v View) Page {
	o.mu.Lock()
	defer o.mu.Unlock()
	return v.Apply(o.state.Items())
}

// Selected returns the selected ids in selection order.
func (o *Orchestrator) Selected() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sel.IDs()
}

// IsSelected reports whether id is selected.
func (o *Orchestrator) IsSelected(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sel.Has(id)
}

// Toggle flips the selection of id, which must be an item of the current
// report. It reports whether id is now selected.
func (o *Orchestrator) Toggle(id string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !slices.ContainsFunc(o.state.Items(), func(it Item) bool { return it.ID == id }) {
		return false, apperrors.New(apperrors.ErrCodeNotFound, "%s is not in the current report", id)
	}
	return o.sel.Toggle(id), nil
}

// TogglePage applies select-all to exactly the page v points at and
// returns that page.
func (o *Orchestrator) TogglePage(v View) Page {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := v.Apply(o.state.Items())
	o.sel.ToggleAll(p.IDs())
	return p
}

// PageSelected reports whether every id on the page v points at is selected.
func (o *Orchestrator) PageSelected(v View) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sel.AllSelected(v.Apply(o.state.Items()).IDs())
}

// ClearSelection deselects everything.
func (o *Orchestrator) ClearSelection() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Clear()
}

// DeleteSelected deletes the selected records of the current report, then
// clears the selection and regenerates the report. A dry run changes
// nothing and keeps the selection.
func (o *Orchestrator) DeleteSelected(ctx context.Context, dryRun bool) (*DeleteResult, error) {
	o.mu.Lock()
	kind, status, ct := o.state.Kind, o.state.Status, o.state.ContentType
	ids := o.sel.IDs()
	o.mu.Unlock()

	switch {
	case o.deleter == nil:
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "deletion is not enabled")
	case status != StatusReady:
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "no report is ready")
	case !kind.Deletable():
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "%s report records cannot be deleted", kind)
	case len(ids) == 0:
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "nothing selected")
	}

	var res *DeleteResult
	if kind == KindEntries {
		res = o.deleter.DeleteEntries(ctx, ids, dryRun)
	} else {
		res = o.deleter.DeleteAssets(ctx, ids, dryRun)
	}
	if dryRun {
		return res, nil
	}

	o.ClearSelection()
	if _, err := o.Generate(ctx, kind, ct); err != nil {
		return res, fmt.Errorf("regenerate %s report: %w", kind, err)
	}
	return res, nil
}

func (o *Orchestrator) notify(s State) {
	o.mu.Lock()
	listeners := slices.Clone(o.listeners)
	o.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}
