// Package booking drives the staged flight selection flow and the final
// two-unit commit. Flights and accommodation are independent resource
// units: each carries its own monotonic booked flag, commits run
// concurrently, and a partial failure leaves the succeeded unit booked.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/arthurpeter/VacationAgent/internal/domain"
	"github.com/arthurpeter/VacationAgent/internal/travelapi"
)

// API is the slice of the travel client the orchestrator needs.
type API interface {
	OutboundFlights(ctx context.Context, req travelapi.FlightsRequest) ([]domain.FlightOption, error)
	InboundFlights(ctx context.Context, req travelapi.FlightsRequest) ([]domain.FlightOption, error)
	Accommodations(ctx context.Context, req travelapi.AccommodationsRequest) ([]domain.HotelOption, error)
	HotelDetails(ctx context.Context, req travelapi.HotelDetailsRequest) (*domain.HotelDetails, error)
	BookFlight(ctx context.Context, req travelapi.FlightsRequest) (*domain.FlightBooking, error)
	BookAccommodation(ctx context.Context, req travelapi.AccommodationBookingRequest) error
}

// Orchestrator owns the client-side booking state for one planning
// session. All operations are safe for concurrent use; state only changes
// after the network call backing a transition has succeeded.
type Orchestrator struct {
	api       API
	sessionID int
	logger    *slog.Logger

	mu        sync.Mutex
	stage     domain.Stage
	selection domain.SelectionSet

	outboundResults []domain.FlightOption
	inboundResults  []domain.FlightOption
	hotelResults    []domain.HotelOption

	// lastParams are the trip parameters the current result sets were
	// produced against; follow-up lookups and the booking call replay them.
	lastParams       domain.TripParams
	flightBookingURL string
}

// Snapshot is a point-in-time copy of the orchestrator state.
type Snapshot struct {
	Stage     domain.Stage
	Selection domain.SelectionSet

	OutboundResults []domain.FlightOption
	InboundResults  []domain.FlightOption
	HotelResults    []domain.HotelOption

	// SummaryVisible mirrors the confirmation summary rule: the summary
	// shows whenever anything is selected, regardless of stage.
	SummaryVisible   bool
	FlightBookingURL string
}

// New creates an orchestrator for one planning session, starting on the
// search stage with nothing selected.
func New(api API, sessionID int, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		api:       api,
		sessionID: sessionID,
		logger:    logger,
		stage:     domain.StageSearch,
	}
}

// SearchFlights runs an outbound flight search. Legal from any stage: a
// new search lands back on the search stage and clears both flight
// selections, but booked flags are untouched. On failure nothing changes.
func (o *Orchestrator) SearchFlights(ctx context.Context, params domain.TripParams) ([]domain.FlightOption, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	results, err := o.api.OutboundFlights(ctx, travelapi.NewFlightsRequest(o.sessionID, params))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	o.applyTransition(domain.EventSearch)
	o.selection.ClearFlights()
	o.outboundResults = results
	o.inboundResults = nil
	o.lastParams = params
	return results, nil
}

// SearchHotels runs an accommodation search. Independent of the flight
// stage machine. A successful search replaces the hotel results and drops
// the current hotel selection; the hotel booked flag is untouched.
func (o *Orchestrator) SearchHotels(ctx context.Context, params domain.TripParams) ([]domain.HotelOption, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	results, err := o.api.Accommodations(ctx, newAccommodationsRequest(o.sessionID, params))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	o.hotelResults = results
	o.selection.Hotel = nil
	o.lastParams = params
	return results, nil
}

// SelectOutbound records an outbound choice and fetches the return options
// scoped to it. The selection and the stage advance only after the lookup
// succeeds; on failure the flow stays on the search stage with the
// previous state intact.
func (o *Orchestrator) SelectOutbound(ctx context.Context, token string) ([]domain.FlightOption, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := domain.Transition(o.stage, domain.EventOutboundChosen)
	if err != nil {
		return nil, err
	}
	option, ok := findFlight(o.outboundResults, token)
	if !ok {
		return nil, ErrUnknownOption
	}

	req := travelapi.NewFlightsRequest(o.sessionID, o.lastParams)
	req.Token = option.Token
	results, err := o.api.InboundFlights(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInboundLookupFailed, err)
	}

	o.stage = next
	stageTransitions.WithLabelValues(domain.EventOutboundChosen.String(), next.String()).Inc()
	o.selection.Outbound = &option
	o.inboundResults = results
	return results, nil
}

// SelectInbound records a return flight choice. Purely local: no network
// call backs it.
func (o *Orchestrator) SelectInbound(token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := domain.Transition(o.stage, domain.EventInboundChosen)
	if err != nil {
		return err
	}
	option, ok := findFlight(o.inboundResults, token)
	if !ok {
		return ErrUnknownOption
	}

	o.stage = next
	stageTransitions.WithLabelValues(domain.EventInboundChosen.String(), next.String()).Inc()
	o.selection.Inbound = &option
	return nil
}

// ChangeOutbound abandons the chosen outbound: both flight selections and
// the return result list are dropped and the flow returns to the search
// stage. Booked flags and hotel state survive.
func (o *Orchestrator) ChangeOutbound() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := domain.Transition(o.stage, domain.EventChangeOutbound)
	if err != nil {
		return err
	}

	o.stage = next
	stageTransitions.WithLabelValues(domain.EventChangeOutbound.String(), next.String()).Inc()
	o.selection.ClearFlights()
	o.inboundResults = nil
	return nil
}

// SelectHotel records an accommodation choice and resolves its booking URL
// via the details lookup. Legal from any stage; the hotel flow does not
// participate in the flight stage machine. The selection is recorded only
// if the details lookup succeeds.
func (o *Orchestrator) SelectHotel(ctx context.Context, hotelID string) (*domain.HotelDetails, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	option, ok := findHotel(o.hotelResults, hotelID)
	if !ok {
		return nil, ErrUnknownOption
	}

	details, err := o.api.HotelDetails(ctx, travelapi.HotelDetailsRequest{
		SessionID:     o.sessionID,
		HotelID:       option.HotelID,
		ArrivalDate:   o.lastParams.OutboundDate,
		DepartureDate: o.lastParams.ReturnDate,
	})
	if err != nil {
		return nil, err
	}

	option.BookingURL = details.URL
	o.selection.Hotel = &option
	return details, nil
}

// Book commits every selected, not-yet-booked unit. The two units commit
// concurrently and independently: one failing does not roll back the
// other, and a unit already booked is never resubmitted. Flights without
// an accommodation are rejected before any network call; an accommodation
// alone books fine, with flights reported as still pending.
func (o *Orchestrator) Book(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.selection.Booked.Complete() {
		return nil
	}

	bookFlights := !o.selection.Booked.Flights && o.selection.FlightPairComplete()
	bookHotel := !o.selection.Booked.Hotel && o.selection.Hotel != nil

	if bookFlights && !bookHotel && !o.selection.Booked.Hotel {
		bookingAttempts.WithLabelValues(string(UnitFlights), "rejected").Inc()
		return ErrNoAccommodationSelected
	}
	if !bookFlights && !bookHotel {
		return ErrNothingToBook
	}

	var (
		wg         sync.WaitGroup
		flightsErr error
		hotelErr   error
		confirmed  *domain.FlightBooking
	)

	if bookFlights {
		req := travelapi.NewFlightsRequest(o.sessionID, o.lastParams)
		req.Token = o.selection.Inbound.Token
		wg.Add(1)
		go func() {
			defer wg.Done()
			confirmed, flightsErr = o.api.BookFlight(ctx, req)
		}()
	}
	if bookHotel {
		req := travelapi.AccommodationBookingRequest{
			SessionID:  o.sessionID,
			BookingURL: o.selection.Hotel.BookingURL,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			hotelErr = o.api.BookAccommodation(ctx, req)
		}()
	}
	wg.Wait()

	var errs []error
	if bookFlights {
		if flightsErr != nil {
			bookingAttempts.WithLabelValues(string(UnitFlights), "failure").Inc()
			errs = append(errs, &PartialFailureError{Unit: UnitFlights, Err: flightsErr})
		} else {
			bookingAttempts.WithLabelValues(string(UnitFlights), "success").Inc()
			o.selection.Booked.Flights = true
			o.flightBookingURL = confirmed.BookingURL
		}
	}
	if bookHotel {
		if hotelErr != nil {
			bookingAttempts.WithLabelValues(string(UnitHotel), "failure").Inc()
			errs = append(errs, &PartialFailureError{Unit: UnitHotel, Err: hotelErr})
		} else {
			bookingAttempts.WithLabelValues(string(UnitHotel), "success").Inc()
			o.selection.Booked.Hotel = true
		}
	}

	if len(errs) > 0 {
		o.logger.WarnContext(ctx, "booking partially failed",
			slog.Int("session_id", o.sessionID),
			slog.Int("failed_units", len(errs)),
		)
		return errors.Join(errs...)
	}
	return nil
}

// Reset returns to the initial state: all selections, result lists, and
// both booked flags are cleared. The only way a booked flag goes false.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.applyTransition(domain.EventReset)
	o.selection.Reset()
	o.outboundResults = nil
	o.inboundResults = nil
	o.hotelResults = nil
	o.flightBookingURL = ""
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	sel := o.selection
	if sel.Outbound != nil {
		v := *sel.Outbound
		sel.Outbound = &v
	}
	if sel.Inbound != nil {
		v := *sel.Inbound
		sel.Inbound = &v
	}
	if sel.Hotel != nil {
		v := *sel.Hotel
		sel.Hotel = &v
	}

	return Snapshot{
		Stage:            o.stage,
		Selection:        sel,
		OutboundResults:  append([]domain.FlightOption(nil), o.outboundResults...),
		InboundResults:   append([]domain.FlightOption(nil), o.inboundResults...),
		HotelResults:     append([]domain.HotelOption(nil), o.hotelResults...),
		SummaryVisible:   o.selection.AnySelected(),
		FlightBookingURL: o.flightBookingURL,
	}
}

// applyTransition applies an event that is legal from every stage.
// Callers hold o.mu.
func (o *Orchestrator) applyTransition(e domain.Event) {
	next, err := domain.Transition(o.stage, e)
	if err != nil {
		// EventSearch and EventReset are total; this cannot happen.
		return
	}
	o.stage = next
	stageTransitions.WithLabelValues(e.String(), next.String()).Inc()
}

func findFlight(options []domain.FlightOption, token string) (domain.FlightOption, bool) {
	for _, opt := range options {
		if opt.Token == token {
			return opt, true
		}
	}
	return domain.FlightOption{}, false
}

func findHotel(options []domain.HotelOption, id string) (domain.HotelOption, bool) {
	for _, opt := range options {
		if opt.HotelID == id {
			return opt, true
		}
	}
	return domain.HotelOption{}, false
}

// newAccommodationsRequest maps trip parameters onto the accommodation
// search body. Child ages travel as a comma-separated list.
func newAccommodationsRequest(sessionID int, p domain.TripParams) travelapi.AccommodationsRequest {
	ages := make([]string, 0, len(p.ChildAges))
	for _, a := range p.ChildAges {
		ages = append(ages, strconv.Itoa(a))
	}
	return travelapi.AccommodationsRequest{
		SessionID:     sessionID,
		Location:      p.Destination,
		SearchType:    "CITY",
		ArrivalDate:   p.OutboundDate,
		DepartureDate: p.ReturnDate,
		Adults:        p.Adults,
		Children:      strings.Join(ages, ","),
		RoomQty:       p.Rooms,
		PriceMax:      p.Budget,
	}
}
