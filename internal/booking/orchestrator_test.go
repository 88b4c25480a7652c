package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurpeter/VacationAgent/internal/domain"
	"github.com/arthurpeter/VacationAgent/internal/travelapi"
)

type fakeTravelAPI struct {
	mu sync.Mutex

	outbound []domain.FlightOption
	inbound  []domain.FlightOption
	hotels   []domain.HotelOption
	details  *domain.HotelDetails

	outboundErr   error
	inboundErr    error
	hotelsErr     error
	detailsErr    error
	bookFlightErr error
	bookHotelErr  error

	inboundCalls    int
	bookFlightCalls int
	bookHotelCalls  int
	lastFlightBook  travelapi.FlightsRequest
	lastHotelBook   travelapi.AccommodationBookingRequest
}

func (f *fakeTravelAPI) OutboundFlights(ctx context.Context, req travelapi.FlightsRequest) ([]domain.FlightOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outbound, f.outboundErr
}

func (f *fakeTravelAPI) InboundFlights(ctx context.Context, req travelapi.FlightsRequest) ([]domain.FlightOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inboundCalls++
	return f.inbound, f.inboundErr
}

func (f *fakeTravelAPI) Accommodations(ctx context.Context, req travelapi.AccommodationsRequest) ([]domain.HotelOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hotels, f.hotelsErr
}

func (f *fakeTravelAPI) HotelDetails(ctx context.Context, req travelapi.HotelDetailsRequest) (*domain.HotelDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details, f.detailsErr
}

func (f *fakeTravelAPI) BookFlight(ctx context.Context, req travelapi.FlightsRequest) (*domain.FlightBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookFlightCalls++
	f.lastFlightBook = req
	if f.bookFlightErr != nil {
		return nil, f.bookFlightErr
	}
	return &domain.FlightBooking{BookingURL: "https://x/checkout/1"}, nil
}

func (f *fakeTravelAPI) BookAccommodation(ctx context.Context, req travelapi.AccommodationBookingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookHotelCalls++
	f.lastHotelBook = req
	return f.bookHotelErr
}

func populatedFake() *fakeTravelAPI {
	return &fakeTravelAPI{
		outbound: []domain.FlightOption{
			{Token: "out-1", Price: 199, Currency: "EUR"},
			{Token: "out-2", Price: 240, Currency: "EUR"},
		},
		inbound: []domain.FlightOption{
			{Token: "in-1", Price: 180, Currency: "EUR"},
		},
		hotels: []domain.HotelOption{
			{HotelID: "h1", Name: "Seaside", Price: 120, Currency: "EUR"},
		},
		details: &domain.HotelDetails{HotelID: "h1", URL: "https://x/book/h1"},
	}
}

func tripParams() domain.TripParams {
	return domain.TripParams{
		Departure:    "VIE",
		Destination:  "BCN",
		OutboundDate: "2026-10-01",
		ReturnDate:   "2026-10-08",
		Adults:       2,
		Rooms:        1,
	}
}

func newOrchestrator(api API) *Orchestrator {
	return New(api, 7, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// selectPair drives the orchestrator through search, outbound, inbound.
func selectPair(t *testing.T, o *Orchestrator) {
	t.Helper()
	_, err := o.SearchFlights(context.Background(), tripParams())
	require.NoError(t, err)
	_, err = o.SelectOutbound(context.Background(), "out-1")
	require.NoError(t, err)
	require.NoError(t, o.SelectInbound("in-1"))
}

// selectHotel drives the orchestrator through hotel search and selection.
func selectHotel(t *testing.T, o *Orchestrator) {
	t.Helper()
	_, err := o.SearchHotels(context.Background(), tripParams())
	require.NoError(t, err)
	_, err = o.SelectHotel(context.Background(), "h1")
	require.NoError(t, err)
}

func TestOrchestrator_SearchFlights(t *testing.T) {
	t.Run("replaces results and clears flight selections", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectPair(t, o)
		require.Equal(t, domain.StageConfirm, o.Snapshot().Stage)

		results, err := o.SearchFlights(context.Background(), tripParams())
		require.NoError(t, err)
		require.Len(t, results, 2)

		snap := o.Snapshot()
		assert.Equal(t, domain.StageSearch, snap.Stage, "a new search is legal from any stage")
		assert.Nil(t, snap.Selection.Outbound)
		assert.Nil(t, snap.Selection.Inbound)
		assert.Empty(t, snap.InboundResults)
	})

	t.Run("failure leaves state untouched", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectPair(t, o)

		api.mu.Lock()
		api.outboundErr = errors.New("backend down")
		api.mu.Unlock()

		_, err := o.SearchFlights(context.Background(), tripParams())
		require.ErrorIs(t, err, ErrSearchFailed)

		snap := o.Snapshot()
		assert.Equal(t, domain.StageConfirm, snap.Stage)
		assert.NotNil(t, snap.Selection.Outbound, "prior results and selections survive a failed search")
	})

	t.Run("invalid params rejected before any call", func(t *testing.T) {
		o := newOrchestrator(populatedFake())
		p := tripParams()
		p.Destination = ""
		_, err := o.SearchFlights(context.Background(), p)
		require.Error(t, err)
	})
}

func TestOrchestrator_SelectOutbound(t *testing.T) {
	t.Run("advances only after the return lookup succeeds", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		_, err := o.SearchFlights(context.Background(), tripParams())
		require.NoError(t, err)

		inbound, err := o.SelectOutbound(context.Background(), "out-1")
		require.NoError(t, err)
		require.Len(t, inbound, 1)

		snap := o.Snapshot()
		assert.Equal(t, domain.StageSelectInbound, snap.Stage)
		require.NotNil(t, snap.Selection.Outbound)
		assert.Equal(t, "out-1", snap.Selection.Outbound.Token)
	})

	t.Run("lookup failure records nothing", func(t *testing.T) {
		api := populatedFake()
		api.inboundErr = errors.New("backend down")
		o := newOrchestrator(api)
		_, err := o.SearchFlights(context.Background(), tripParams())
		require.NoError(t, err)

		_, err = o.SelectOutbound(context.Background(), "out-1")
		require.ErrorIs(t, err, ErrInboundLookupFailed)

		snap := o.Snapshot()
		assert.Equal(t, domain.StageSearch, snap.Stage, "the flow stays on search after a failed lookup")
		assert.Nil(t, snap.Selection.Outbound)
	})

	t.Run("unknown token", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		_, err := o.SearchFlights(context.Background(), tripParams())
		require.NoError(t, err)

		_, err = o.SelectOutbound(context.Background(), "nope")
		require.ErrorIs(t, err, ErrUnknownOption)
		assert.Equal(t, 0, api.inboundCalls)
	})

	t.Run("illegal from confirm stage", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectPair(t, o)
		calls := api.inboundCalls

		_, err := o.SelectOutbound(context.Background(), "out-2")
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, calls, api.inboundCalls, "guard fires before any network call")
	})
}

func TestOrchestrator_SelectInbound(t *testing.T) {
	api := populatedFake()
	o := newOrchestrator(api)
	_, err := o.SearchFlights(context.Background(), tripParams())
	require.NoError(t, err)
	_, err = o.SelectOutbound(context.Background(), "out-1")
	require.NoError(t, err)

	require.NoError(t, o.SelectInbound("in-1"))

	snap := o.Snapshot()
	assert.Equal(t, domain.StageConfirm, snap.Stage)
	assert.True(t, snap.Selection.FlightPairComplete())

	// Purely local: no extra lookup happened.
	assert.Equal(t, 1, api.inboundCalls)
}

func TestOrchestrator_ChangeOutbound(t *testing.T) {
	api := populatedFake()
	o := newOrchestrator(api)
	selectPair(t, o)
	selectHotel(t, o)

	require.NoError(t, o.ChangeOutbound())

	snap := o.Snapshot()
	assert.Equal(t, domain.StageSearch, snap.Stage)
	assert.Nil(t, snap.Selection.Outbound)
	assert.Nil(t, snap.Selection.Inbound)
	assert.Empty(t, snap.InboundResults, "return options are scoped to the abandoned outbound")
	assert.NotNil(t, snap.Selection.Hotel, "the hotel flow is independent of the flight stages")
}

func TestOrchestrator_SelectHotel(t *testing.T) {
	t.Run("resolves booking url from details", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectHotel(t, o)

		snap := o.Snapshot()
		require.NotNil(t, snap.Selection.Hotel)
		assert.Equal(t, "https://x/book/h1", snap.Selection.Hotel.BookingURL)
	})

	t.Run("selectable before any flight search", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectHotel(t, o)

		snap := o.Snapshot()
		assert.True(t, snap.SummaryVisible, "a hotel alone surfaces the confirmation summary")
		assert.Equal(t, domain.StageSearch, snap.Stage)
	})

	t.Run("details failure records nothing", func(t *testing.T) {
		api := populatedFake()
		api.detailsErr = errors.New("backend down")
		o := newOrchestrator(api)
		_, err := o.SearchHotels(context.Background(), tripParams())
		require.NoError(t, err)

		_, err = o.SelectHotel(context.Background(), "h1")
		require.Error(t, err)
		assert.Nil(t, o.Snapshot().Selection.Hotel)
	})
}

func TestOrchestrator_Book(t *testing.T) {
	t.Run("flights without accommodation rejected before any call", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectPair(t, o)

		err := o.Book(context.Background())
		require.ErrorIs(t, err, ErrNoAccommodationSelected)
		assert.Equal(t, 0, api.bookFlightCalls)
		assert.Equal(t, 0, api.bookHotelCalls)
	})

	t.Run("hotel alone books fine", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectHotel(t, o)

		require.NoError(t, o.Book(context.Background()))

		snap := o.Snapshot()
		assert.True(t, snap.Selection.Booked.Hotel)
		assert.False(t, snap.Selection.Booked.Flights, "flights stay pending, not failed")
		assert.Equal(t, 0, api.bookFlightCalls)
		assert.Equal(t, "https://x/book/h1", api.lastHotelBook.BookingURL)
	})

	t.Run("both units commit", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectPair(t, o)
		selectHotel(t, o)

		require.NoError(t, o.Book(context.Background()))

		snap := o.Snapshot()
		assert.True(t, snap.Selection.Booked.Complete())
		assert.Equal(t, 1, api.bookFlightCalls)
		assert.Equal(t, 1, api.bookHotelCalls)
		assert.Equal(t, "in-1", api.lastFlightBook.Token, "the booking call carries the inbound's token")
		assert.Equal(t, "https://x/checkout/1", snap.FlightBookingURL)
	})

	t.Run("partial failure keeps the succeeded unit booked", func(t *testing.T) {
		api := populatedFake()
		api.bookFlightErr = errors.New("no seats left")
		o := newOrchestrator(api)
		selectPair(t, o)
		selectHotel(t, o)

		err := o.Book(context.Background())
		require.Error(t, err)

		var partial *PartialFailureError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, UnitFlights, partial.Unit)

		snap := o.Snapshot()
		assert.True(t, snap.Selection.Booked.Hotel)
		assert.False(t, snap.Selection.Booked.Flights)

		// Second attempt retries only the failed unit.
		api.mu.Lock()
		api.bookFlightErr = nil
		api.mu.Unlock()

		require.NoError(t, o.Book(context.Background()))
		assert.Equal(t, 2, api.bookFlightCalls)
		assert.Equal(t, 1, api.bookHotelCalls, "a booked unit is never resubmitted")
		assert.True(t, o.Snapshot().Selection.Booked.Complete())
	})

	t.Run("fully booked is a no-op", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectPair(t, o)
		selectHotel(t, o)
		require.NoError(t, o.Book(context.Background()))

		require.NoError(t, o.Book(context.Background()))
		assert.Equal(t, 1, api.bookFlightCalls)
		assert.Equal(t, 1, api.bookHotelCalls)
	})

	t.Run("nothing selected", func(t *testing.T) {
		o := newOrchestrator(populatedFake())
		require.ErrorIs(t, o.Book(context.Background()), ErrNothingToBook)
	})

	t.Run("booked flags survive a new search", func(t *testing.T) {
		api := populatedFake()
		o := newOrchestrator(api)
		selectPair(t, o)
		selectHotel(t, o)
		require.NoError(t, o.Book(context.Background()))

		_, err := o.SearchFlights(context.Background(), tripParams())
		require.NoError(t, err)

		snap := o.Snapshot()
		assert.True(t, snap.Selection.Booked.Complete(), "booked flags are monotonic until reset")
		assert.Nil(t, snap.Selection.Outbound)
	})
}

func TestOrchestrator_Reset(t *testing.T) {
	api := populatedFake()
	o := newOrchestrator(api)
	selectPair(t, o)
	selectHotel(t, o)
	require.NoError(t, o.Book(context.Background()))

	o.Reset()

	snap := o.Snapshot()
	assert.Equal(t, domain.StageSearch, snap.Stage)
	assert.False(t, snap.Selection.AnySelected())
	assert.Equal(t, domain.BookedFlags{}, snap.Selection.Booked, "reset is the only way booked flags go false")
	assert.Empty(t, snap.OutboundResults)
	assert.Empty(t, snap.HotelResults)
	assert.Empty(t, snap.FlightBookingURL)
}

func TestOrchestrator_SnapshotIsACopy(t *testing.T) {
	api := populatedFake()
	o := newOrchestrator(api)
	selectPair(t, o)

	snap := o.Snapshot()
	snap.Selection.Outbound.Token = "mutated"

	assert.Equal(t, "out-1", o.Snapshot().Selection.Outbound.Token)
}
