package travelapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/arthurpeter/VacationAgent/internal/domain"
	"github.com/arthurpeter/VacationAgent/pkg/httpclient"
)

// FlightsRequest is the body for the outbound/inbound flight search and the
// flight booking call. Token scopes the request: empty for an outbound
// search, the outbound's departure token for an inbound search, and the
// inbound's booking token for the booking call.
type FlightsRequest struct {
	SessionID     int    `json:"session_id"`
	Token         string `json:"token,omitempty"`
	Departure     string `json:"departure"`
	Arrival       string `json:"arrival"`
	OutboundDate  string `json:"outbound_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children,omitempty"`
	InfantsInSeat int    `json:"infants_in_seat,omitempty"`
	InfantsOnLap  int    `json:"infants_on_lap,omitempty"`
	SortBy        int    `json:"sort_by,omitempty"`
	Stops         int    `json:"stops,omitempty"`
}

// NewFlightsRequest builds a flight search request from trip parameters.
func NewFlightsRequest(sessionID int, p domain.TripParams) FlightsRequest {
	return FlightsRequest{
		SessionID:     sessionID,
		Departure:     p.Departure,
		Arrival:       p.Destination,
		OutboundDate:  p.OutboundDate,
		ReturnDate:    p.ReturnDate,
		Adults:        p.Adults,
		Children:      p.Children,
		InfantsInSeat: p.InfantsInSeat,
		InfantsOnLap:  p.InfantsOnLap,
		SortBy:        p.SortBy,
		Stops:         p.Stops,
	}
}

// AccommodationsRequest is the body for the accommodation search.
type AccommodationsRequest struct {
	SessionID     int    `json:"session_id"`
	Location      string `json:"location"`
	SearchType    string `json:"search_type"`
	ArrivalDate   string `json:"arrival_date"`
	DepartureDate string `json:"departure_date"`
	Adults        int    `json:"adults,omitempty"`
	Children      string `json:"children,omitempty"`
	RoomQty       int    `json:"room_qty,omitempty"`
	PriceMin      int    `json:"price_min,omitempty"`
	PriceMax      int    `json:"price_max,omitempty"`
}

// HotelDetailsRequest asks for the expanded view of one accommodation.
type HotelDetailsRequest struct {
	SessionID     int    `json:"session_id"`
	HotelID       string `json:"hotel_id"`
	ArrivalDate   string `json:"arrival_date"`
	DepartureDate string `json:"departure_date"`
}

// AccommodationBookingRequest commits a previously selected accommodation
// using the booking URL obtained from the details call.
type AccommodationBookingRequest struct {
	SessionID  int    `json:"session_id"`
	BookingURL string `json:"booking_url"`
}

// ExploreRequest asks the backend to suggest travel dates for a flexible
// trip of the given duration in the given month.
type ExploreRequest struct {
	Departure     string `json:"departure"`
	Arrival       string `json:"arrival"`
	DurationType  int    `json:"duration_type"`
	Month         int    `json:"month"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children,omitempty"`
	InfantsInSeat int    `json:"infants_in_seat,omitempty"`
	InfantsOnLap  int    `json:"infants_on_lap,omitempty"`
	Stops         int    `json:"stops,omitempty"`
}

// ExploreResponse is the suggested date range.
type ExploreResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ExploreDestinations suggests a date range for a flexible trip.
func (c *Client) ExploreDestinations(ctx context.Context, req ExploreRequest) (*ExploreResponse, error) {
	var out ExploreResponse
	if err := c.call(ctx, http.MethodPost, "/search/exploreDestinations", req, &out, "explore destinations"); err != nil {
		return nil, err
	}
	return &out, nil
}

// OutboundFlights searches outbound flight options.
func (c *Client) OutboundFlights(ctx context.Context, req FlightsRequest) ([]domain.FlightOption, error) {
	var out []domain.FlightOption
	if err := c.call(ctx, http.MethodPost, "/search/getOutboundFlights", req, &out, "outbound flight search"); err != nil {
		return nil, err
	}
	return out, nil
}

// InboundFlights searches return options scoped to the chosen outbound
// fare's token.
func (c *Client) InboundFlights(ctx context.Context, req FlightsRequest) ([]domain.FlightOption, error) {
	var out []domain.FlightOption
	if err := c.call(ctx, http.MethodPost, "/search/getInboundFlights", req, &out, "inbound flight search"); err != nil {
		return nil, err
	}
	return out, nil
}

// Accommodations searches hotel options.
func (c *Client) Accommodations(ctx context.Context, req AccommodationsRequest) ([]domain.HotelOption, error) {
	var out []domain.HotelOption
	if err := c.call(ctx, http.MethodPost, "/search/getAccomodations", req, &out, "accommodation search"); err != nil {
		return nil, err
	}
	return out, nil
}

// HotelDetails fetches the expanded record for one hotel, including the
// booking URL.
func (c *Client) HotelDetails(ctx context.Context, req HotelDetailsRequest) (*domain.HotelDetails, error) {
	var out domain.HotelDetails
	if err := c.call(ctx, http.MethodPost, "/search/getHotelDetails", req, &out, "hotel details"); err != nil {
		return nil, err
	}
	return &out, nil
}

// BookFlight commits the flight pair identified by the inbound booking
// token. Both legs are covered by the one call.
func (c *Client) BookFlight(ctx context.Context, req FlightsRequest) (*domain.FlightBooking, error) {
	var out domain.FlightBooking
	if err := c.bookingCall(ctx, "/search/bookFlight", req, &out, "flight booking"); err != nil {
		return nil, err
	}
	return &out, nil
}

// BookAccommodation commits the selected accommodation.
func (c *Client) BookAccommodation(ctx context.Context, req AccommodationBookingRequest) error {
	var out struct {
		Message string `json:"message"`
	}
	return c.bookingCall(ctx, "/search/bookAccomodation", req, &out, "accommodation booking")
}

// bookingCall is call plus an idempotency key, so a commit the client
// retries after a transport failure cannot double-book.
func (c *Client) bookingCall(ctx context.Context, path string, body, out any, operation string) error {
	ctx = httpclient.ContextWithHeader(ctx, "Idempotency-Key", uuid.NewString())
	return c.call(ctx, http.MethodPost, path, body, out, operation)
}
