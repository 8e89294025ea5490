package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Options tunes the windowing and classification rules of an Engine.
type Options struct {
	// NeutralBand is the absolute projected balance under which the trend
	// is neutro. Zero reduces the classification to a sign check.
	NeutralBand decimal.Decimal

	// ProjectionMonths is the number of trailing months averaged.
	ProjectionMonths int
	// ProjectionHorizon is the number of projected months.
	ProjectionHorizon int
	// ProjectionIncludesCurrentMonth makes the trailing window end at the
	// current (possibly partial) month instead of the previous one.
	ProjectionIncludesCurrentMonth bool

	// EvolutionMonths is the length of the dashboard's monthly series.
	EvolutionMonths int
	// EvolutionIncludesCurrentMonth anchors the series at the current month.
	EvolutionIncludesCurrentMonth bool

	// RecurringTopN caps the ranked recurrence lists. Zero disables the cap.
	RecurringTopN int
}

func DefaultOptions() Options {
	return Options{
		NeutralBand:                   decimal.Zero,
		ProjectionMonths:              3,
		ProjectionHorizon:             6,
		EvolutionMonths:               6,
		EvolutionIncludesCurrentMonth: true,
		RecurringTopN:                 10,
	}
}

// Engine computes the derived views. It holds configuration only and is
// safe for concurrent use.
type Engine struct {
	opts Options
	now  func() time.Time
}

// New returns an Engine. A nil clock defaults to time.Now.
func New(opts Options, now func() time.Time) *Engine {
	d := DefaultOptions()
	if opts.ProjectionMonths <= 0 {
		opts.ProjectionMonths = d.ProjectionMonths
	}
	if opts.ProjectionHorizon <= 0 {
		opts.ProjectionHorizon = d.ProjectionHorizon
	}
	if opts.EvolutionMonths <= 0 {
		opts.EvolutionMonths = d.EvolutionMonths
	}
	if opts.RecurringTopN < 0 {
		opts.RecurringTopN = 0
	}
	opts.NeutralBand = opts.NeutralBand.Abs()
	if now == nil {
		now = time.Now
	}
	return &Engine{opts: opts, now: now}
}

func (e *Engine) Options() Options { return e.opts }

// Now returns the engine's reference time.
func (e *Engine) Now() time.Time { return e.now() }
