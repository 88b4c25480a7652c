package sessionsync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurpeter/VacationAgent/internal/domain"
)

type fakeAPI struct {
	mu        sync.Mutex
	session   *domain.PlanningSession
	getErr    error
	updateErr error
	patches   []domain.SessionPatch
}

func (f *fakeAPI) GetSession(ctx context.Context, id int) (*domain.PlanningSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s := *f.session
	return &s, nil
}

func (f *fakeAPI) UpdateSessionDetails(ctx context.Context, id int, patch domain.SessionPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.patches = append(f.patches, patch)
	return nil
}

func (f *fakeAPI) recorded() []domain.SessionPatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SessionPatch(nil), f.patches...)
}

func newTestEngine(t *testing.T, api *fakeAPI, quiet time.Duration) *Engine {
	t.Helper()
	engine := New(context.Background(), api, 7, Config{
		Quiet:           quiet,
		WritesPerSecond: 1000,
		WriteBurst:      1000,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(engine.Close)
	return engine
}

func TestEngine_TerminalEditWritesThroughImmediately(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(t, api, time.Hour)

	require.NoError(t, engine.SetString(context.Background(), FieldDestination, "BCN", Terminal))

	patches := api.recorded()
	require.Len(t, patches, 1)
	require.NotNil(t, patches[0].Destination)
	assert.Equal(t, "BCN", *patches[0].Destination)
}

func TestEngine_TransientEditsCoalesce(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(t, api, 40*time.Millisecond)

	// A typing burst: only the final value may reach the wire.
	for _, v := range []string{"B", "Ba", "Bar", "Barc", "Barcelona"} {
		require.NoError(t, engine.SetString(context.Background(), FieldDestination, v, Transient))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(api.recorded()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	patches := api.recorded()
	require.NotNil(t, patches[0].Destination)
	assert.Equal(t, "Barcelona", *patches[0].Destination)

	// Quiet period long gone: still exactly one write.
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, api.recorded(), 1)
}

func TestEngine_TerminalCancelsPendingTransient(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(t, api, 50*time.Millisecond)

	require.NoError(t, engine.SetString(context.Background(), FieldDestination, "Barcel", Transient))
	require.NoError(t, engine.SetString(context.Background(), FieldDestination, "Barcelona", Terminal))

	time.Sleep(120 * time.Millisecond)

	patches := api.recorded()
	require.Len(t, patches, 1, "the debounced write must not fire after the terminal one")
	assert.Equal(t, "Barcelona", *patches[0].Destination)
}

func TestEngine_IndependentFieldsDebounceSeparately(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(t, api, 30*time.Millisecond)

	require.NoError(t, engine.SetString(context.Background(), FieldDeparture, "VIE", Transient))
	require.NoError(t, engine.SetString(context.Background(), FieldDestination, "BCN", Transient))

	require.Eventually(t, func() bool {
		return len(api.recorded()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngine_LoadSeedsOnlyUntouchedFields(t *testing.T) {
	api := &fakeAPI{session: &domain.PlanningSession{
		ID: 7, Departure: "VIE", Destination: "LIS", FromDate: "2026-10-01", Adults: 3,
	}}
	engine := newTestEngine(t, api, time.Hour)

	// The user edits before the load answer arrives.
	require.NoError(t, engine.SetString(context.Background(), FieldDestination, "BCN", Terminal))

	require.NoError(t, engine.Load(context.Background()))

	mirror := engine.Snapshot()
	assert.Equal(t, "BCN", mirror.Destination, "a late load never clobbers a local edit")
	assert.Equal(t, "VIE", mirror.Departure, "untouched fields come from the server")
	assert.Equal(t, "2026-10-01", mirror.OutboundDate)
	assert.Equal(t, 3, mirror.Adults)
}

func TestEngine_LoadFailureKeepsDefaults(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("backend down")}
	engine := newTestEngine(t, api, time.Hour)

	require.Error(t, engine.Load(context.Background()))

	mirror := engine.Snapshot()
	assert.Equal(t, 1, mirror.Adults)
	assert.Equal(t, 1, mirror.Rooms)
}

func TestEngine_AdultsClampRidesInSamePatch(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(t, api, time.Hour)

	require.NoError(t, engine.SetInt(context.Background(), FieldAdults, 3, Terminal))
	require.NoError(t, engine.SetInt(context.Background(), FieldRooms, 3, Terminal))
	require.NoError(t, engine.SetInt(context.Background(), FieldAdults, 1, Terminal))

	patches := api.recorded()
	require.Len(t, patches, 3)

	last := patches[2]
	require.NotNil(t, last.Adults)
	require.NotNil(t, last.Rooms, "the clamped room count travels with the adults update")
	assert.Equal(t, 1, *last.Adults)
	assert.Equal(t, 1, *last.Rooms)

	mirror := engine.Snapshot()
	assert.Equal(t, 1, mirror.Rooms)
}

func TestEngine_FailedWriteKeepsLocalValue(t *testing.T) {
	api := &fakeAPI{updateErr: errors.New("backend down")}
	engine := newTestEngine(t, api, time.Hour)

	require.NoError(t, engine.SetString(context.Background(), FieldDestination, "BCN", Terminal))

	mirror := engine.Snapshot()
	assert.Equal(t, "BCN", mirror.Destination, "the optimistic local value survives a failed write")
}

func TestEngine_CloseDropsPendingWrites(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(t, api, 30*time.Millisecond)

	require.NoError(t, engine.SetString(context.Background(), FieldDestination, "BCN", Transient))
	engine.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, api.recorded())
}

func TestEngine_FlushFiresPendingImmediately(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(t, api, time.Hour)

	require.NoError(t, engine.SetString(context.Background(), FieldDestination, "BCN", Transient))
	require.Empty(t, api.recorded())

	engine.Flush()

	require.Eventually(t, func() bool {
		return len(api.recorded()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEngine_TypeMismatchRejected(t *testing.T) {
	engine := newTestEngine(t, &fakeAPI{}, time.Hour)

	assert.Error(t, engine.SetString(context.Background(), FieldAdults, "two", Terminal))
	assert.Error(t, engine.SetInt(context.Background(), FieldDestination, 2, Terminal))
}
