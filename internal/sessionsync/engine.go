// Package sessionsync keeps a local mirror of the trip parameters
// consistent with the remote planning session, with bounded network
// chatter: terminal edits are written through immediately, transient edits
// are coalesced behind a quiet period, and the initial load never clobbers
// a field the user already touched.
package sessionsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/arthurpeter/VacationAgent/internal/domain"
	"github.com/arthurpeter/VacationAgent/pkg/debounce"
)

// Field identifies one syncable session field.
type Field string

const (
	FieldDeparture     Field = "departure"
	FieldDestination   Field = "destination"
	FieldFromDate      Field = "from_date"
	FieldToDate        Field = "to_date"
	FieldAdults        Field = "adults"
	FieldChildren      Field = "children"
	FieldChildAges     Field = "child_ages"
	FieldInfantsInSeat Field = "infants_in_seat"
	FieldInfantsOnLap  Field = "infants_on_lap"
	FieldRooms         Field = "room_qty"
	FieldBudget        Field = "budget"
	FieldFlightsURL    Field = "flights_url"
	FieldAccomodURL    Field = "accomodation_url"
)

// Provenance distinguishes finished values from in-progress keystrokes.
type Provenance int

const (
	// Terminal marks a value the user has finished setting: a picked
	// suggestion, a counter click, a completed date. Written through
	// immediately.
	Terminal Provenance = iota
	// Transient marks an uncertain in-progress value, e.g. a keystroke
	// in a free-text field. Coalesced behind the quiet period.
	Transient
)

// API is the slice of the travel client the engine needs.
type API interface {
	GetSession(ctx context.Context, id int) (*domain.PlanningSession, error)
	UpdateSessionDetails(ctx context.Context, id int, patch domain.SessionPatch) error
}

// Mirror is the local optimistic copy of the syncable session fields.
type Mirror struct {
	domain.TripParams
	FlightsURL string
	AccomodURL string
}

// Engine reconciles the local mirror with the remote session record.
type Engine struct {
	api       API
	sessionID int
	quiet     time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger

	// baseCtx is used for writes that fire from debounce timers, after
	// the triggering call has returned.
	baseCtx context.Context

	mu      sync.Mutex
	mirror  Mirror
	touched map[Field]bool
	pending map[Field]*debounce.Timer
	closed  bool
}

// Config holds engine tuning knobs.
type Config struct {
	// Quiet is the debounce window for transient edits.
	Quiet time.Duration
	// WritesPerSecond bounds the write-through rate. Terminal writes are
	// delayed, never dropped, when the budget is exhausted.
	WritesPerSecond float64
	// WriteBurst is the rate limiter burst size.
	WriteBurst int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Quiet:           400 * time.Millisecond,
		WritesPerSecond: 5,
		WriteBurst:      10,
	}
}

// New creates a sync engine for one planning session. baseCtx bounds the
// lifetime of deferred (debounced) writes.
func New(baseCtx context.Context, api API, sessionID int, cfg Config, logger *slog.Logger) *Engine {
	if cfg.Quiet <= 0 {
		cfg.Quiet = DefaultConfig().Quiet
	}
	if cfg.WritesPerSecond <= 0 {
		cfg.WritesPerSecond = DefaultConfig().WritesPerSecond
	}
	if cfg.WriteBurst <= 0 {
		cfg.WriteBurst = DefaultConfig().WriteBurst
	}
	e := &Engine{
		api:       api,
		sessionID: sessionID,
		quiet:     cfg.Quiet,
		limiter:   rate.NewLimiter(rate.Limit(cfg.WritesPerSecond), cfg.WriteBurst),
		logger:    logger,
		baseCtx:   baseCtx,
		touched:   make(map[Field]bool),
		pending:   make(map[Field]*debounce.Timer),
	}
	e.mirror.Adults = 1
	e.mirror.Rooms = 1
	return e
}

// Load fetches the remote record once and seeds every field the user has
// not touched in this process lifetime. A late-arriving load never
// overwrites an in-flight local edit. Load failure leaves the defaults in
// place and is not retried.
func (e *Engine) Load(ctx context.Context) error {
	session, err := e.api.GetSession(ctx, e.sessionID)
	if err != nil {
		e.logger.WarnContext(ctx, "session load failed, keeping local defaults",
			slog.Int("session_id", e.sessionID),
			slog.String("error", err.Error()),
		)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.seed(FieldDeparture, func() { e.mirror.Departure = session.Departure })
	e.seed(FieldDestination, func() { e.mirror.Destination = session.Destination })
	e.seed(FieldFromDate, func() { e.mirror.OutboundDate = session.FromDate })
	e.seed(FieldToDate, func() { e.mirror.ReturnDate = session.ToDate })
	if session.Adults > 0 {
		e.seed(FieldAdults, func() { e.mirror.Adults = session.Adults })
	}
	e.seed(FieldChildren, func() { e.mirror.Children = session.Children })
	e.seed(FieldChildAges, func() { e.mirror.ChildAges = session.ChildAges })
	e.seed(FieldInfantsInSeat, func() { e.mirror.InfantsInSeat = session.InfantsInSeat })
	e.seed(FieldInfantsOnLap, func() { e.mirror.InfantsOnLap = session.InfantsOnLap })
	if session.Rooms > 0 {
		e.seed(FieldRooms, func() { e.mirror.Rooms = session.Rooms })
	}
	e.seed(FieldFlightsURL, func() { e.mirror.FlightsURL = session.FlightsURL })
	e.seed(FieldAccomodURL, func() { e.mirror.AccomodURL = session.AccomodationURL })

	// Keep the clamp invariant even against server data.
	if e.mirror.Rooms > e.mirror.Adults {
		e.mirror.Rooms = e.mirror.Adults
	}
	return nil
}

func (e *Engine) seed(f Field, apply func()) {
	if !e.touched[f] {
		apply()
	}
}

// SetString records a string-valued field edit.
func (e *Engine) SetString(ctx context.Context, f Field, value string, prov Provenance) error {
	e.mu.Lock()
	switch f {
	case FieldDeparture:
		e.mirror.Departure = value
	case FieldDestination:
		e.mirror.Destination = value
	case FieldFromDate:
		e.mirror.OutboundDate = value
	case FieldToDate:
		e.mirror.ReturnDate = value
	case FieldFlightsURL:
		e.mirror.FlightsURL = value
	case FieldAccomodURL:
		e.mirror.AccomodURL = value
	default:
		e.mu.Unlock()
		return fmt.Errorf("field %q does not hold a string", f)
	}
	e.touched[f] = true
	e.mu.Unlock()

	e.dispatch(ctx, prov, f)
	return nil
}

// SetInt records an integer-valued field edit. Setting the adult count
// clamps the room quantity in the same update cycle, and the clamped room
// value rides in the same patch.
func (e *Engine) SetInt(ctx context.Context, f Field, value int, prov Provenance) error {
	e.mu.Lock()
	fields := []Field{f}
	switch f {
	case FieldAdults:
		roomsBefore := e.mirror.Rooms
		e.mirror.SetAdults(value)
		if e.mirror.Rooms != roomsBefore {
			e.touched[FieldRooms] = true
			fields = append(fields, FieldRooms)
		}
	case FieldChildren:
		e.mirror.Children = value
	case FieldInfantsInSeat:
		e.mirror.InfantsInSeat = value
	case FieldInfantsOnLap:
		e.mirror.InfantsOnLap = value
	case FieldRooms:
		e.mirror.SetRooms(value)
	case FieldBudget:
		e.mirror.Budget = value
	default:
		e.mu.Unlock()
		return fmt.Errorf("field %q does not hold an int", f)
	}
	e.touched[f] = true
	e.mu.Unlock()

	e.dispatch(ctx, prov, fields...)
	return nil
}

// SetChildAges records the per-child age list.
func (e *Engine) SetChildAges(ctx context.Context, ages []int, prov Provenance) error {
	e.mu.Lock()
	e.mirror.ChildAges = append([]int(nil), ages...)
	e.touched[FieldChildAges] = true
	e.mu.Unlock()

	e.dispatch(ctx, prov, FieldChildAges)
	return nil
}

// dispatch routes an edit to the write path its provenance demands. A
// terminal edit cancels any pending debounced write for the same fields so
// a stale value can never land after the final one.
func (e *Engine) dispatch(ctx context.Context, prov Provenance, fields ...Field) {
	switch prov {
	case Terminal:
		e.mu.Lock()
		for _, f := range fields {
			if t, ok := e.pending[f]; ok {
				t.Cancel()
			}
		}
		e.mu.Unlock()
		e.write(ctx, fields...)
	case Transient:
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}
		for _, f := range fields {
			t, ok := e.pending[f]
			if !ok {
				t = debounce.New(e.quiet)
				e.pending[f] = t
			}
			f := f
			t.Trigger(func() { e.write(e.baseCtx, f) })
		}
		e.mu.Unlock()
	}
}

// write pushes the latest values of the given fields as one partial
// update. Failures are logged and the local values kept; there is no
// retry, and the caller's interaction is never blocked on one.
func (e *Engine) write(ctx context.Context, fields ...Field) {
	if err := e.limiter.Wait(ctx); err != nil {
		return
	}

	e.mu.Lock()
	patch := e.patchFor(fields...)
	e.mu.Unlock()
	if patch.IsEmpty() {
		return
	}

	if err := e.api.UpdateSessionDetails(ctx, e.sessionID, patch); err != nil {
		e.logger.WarnContext(ctx, "session write-through failed, keeping local value",
			slog.Int("session_id", e.sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// patchFor builds a partial update carrying the current values of the
// given fields. Callers hold e.mu.
func (e *Engine) patchFor(fields ...Field) domain.SessionPatch {
	var patch domain.SessionPatch
	for _, f := range fields {
		switch f {
		case FieldDeparture:
			v := e.mirror.Departure
			patch.Departure = &v
		case FieldDestination:
			v := e.mirror.Destination
			patch.Destination = &v
		case FieldFromDate:
			v := e.mirror.OutboundDate
			patch.FromDate = &v
		case FieldToDate:
			v := e.mirror.ReturnDate
			patch.ToDate = &v
		case FieldAdults:
			v := e.mirror.Adults
			patch.Adults = &v
		case FieldChildren:
			v := e.mirror.Children
			patch.Children = &v
		case FieldChildAges:
			v := append([]int(nil), e.mirror.ChildAges...)
			patch.ChildAges = &v
		case FieldInfantsInSeat:
			v := e.mirror.InfantsInSeat
			patch.InfantsInSeat = &v
		case FieldInfantsOnLap:
			v := e.mirror.InfantsOnLap
			patch.InfantsOnLap = &v
		case FieldRooms:
			v := e.mirror.Rooms
			patch.Rooms = &v
		case FieldBudget:
			v := e.mirror.Budget
			patch.Budget = &v
		case FieldFlightsURL:
			v := e.mirror.FlightsURL
			patch.FlightsURL = &v
		case FieldAccomodURL:
			v := e.mirror.AccomodURL
			patch.AccomodURL = &v
		}
	}
	return patch
}

// Snapshot returns a copy of the local mirror.
func (e *Engine) Snapshot() Mirror {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.mirror
	m.ChildAges = append([]int(nil), e.mirror.ChildAges...)
	return m
}

// Params returns the current trip parameters.
func (e *Engine) Params() domain.TripParams {
	return e.Snapshot().TripParams
}

// Flush fires every pending debounced write immediately.
func (e *Engine) Flush() {
	e.mu.Lock()
	timers := make([]*debounce.Timer, 0, len(e.pending))
	for _, t := range e.pending {
		timers = append(timers, t)
	}
	e.mu.Unlock()

	for _, t := range timers {
		t.Flush()
	}
}

// Close cancels all pending writes. Further transient edits are dropped.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for _, t := range e.pending {
		t.Cancel()
	}
}
