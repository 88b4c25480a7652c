package travelapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/arthurpeter/VacationAgent/pkg/errors"

	"github.com/arthurpeter/VacationAgent/internal/domain"
)

// fakeGateway records calls and plays back scripted responses.
type fakeGateway struct {
	calls  []recordedCall
	status int
	body   string
}

type recordedCall struct {
	method string
	path   string
	body   any
}

func (f *fakeGateway) Call(ctx context.Context, method, path string, body any) (*http.Response, error) {
	f.calls = append(f.calls, recordedCall{method: method, path: path, body: body})
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func testClient(gw *fakeGateway) *Client {
	return New(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_CreateSession(t *testing.T) {
	gw := &fakeGateway{body: `{"session_id": 42}`}
	id, err := testClient(gw).CreateSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 42, id)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, http.MethodPost, gw.calls[0].method)
	assert.Equal(t, "/session/create", gw.calls[0].path)
}

func TestClient_GetSession(t *testing.T) {
	gw := &fakeGateway{body: `{
		"id": 7, "user_id": "u1", "current_stage": "discovery",
		"departure": "VIE", "destination": "BCN",
		"booked_flights": true, "booked_accomodation": false
	}`}
	session, err := testClient(gw).GetSession(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 7, session.ID)
	assert.Equal(t, "VIE", session.Departure)
	assert.True(t, session.BookedFlights)
	assert.False(t, session.BookedAccommodat)
	assert.Equal(t, "/session/7", gw.calls[0].path)
	assert.Equal(t, http.MethodGet, gw.calls[0].method)
}

func TestClient_GetSession_NotFound(t *testing.T) {
	gw := &fakeGateway{status: http.StatusNotFound, body: `{"detail":"Session not found"}`}
	_, err := testClient(gw).GetSession(context.Background(), 99)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_ListSessions(t *testing.T) {
	gw := &fakeGateway{body: `{"session_ids": [1, 2, 5]}`}
	ids, err := testClient(gw).ListSessions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 5}, ids)
	assert.Equal(t, "/session/getSessions", gw.calls[0].path)
}

func TestClient_DeleteSession(t *testing.T) {
	gw := &fakeGateway{body: `{}`}
	require.NoError(t, testClient(gw).DeleteSession(context.Background(), 3))
	assert.Equal(t, "/session/delete/3", gw.calls[0].path)
	assert.Equal(t, http.MethodPost, gw.calls[0].method)
}

func TestClient_UpdateSessionDetails(t *testing.T) {
	t.Run("patches only set fields", func(t *testing.T) {
		gw := &fakeGateway{body: `{}`}
		dep := "VIE"
		patch := domain.SessionPatch{Departure: &dep}
		require.NoError(t, testClient(gw).UpdateSessionDetails(context.Background(), 7, patch))

		require.Len(t, gw.calls, 1)
		assert.Equal(t, http.MethodPatch, gw.calls[0].method)
		assert.Equal(t, "/session/7/details", gw.calls[0].path)

		raw, err := json.Marshal(gw.calls[0].body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"departure":"VIE"}`, string(raw))
	})

	t.Run("empty patch is a local no-op", func(t *testing.T) {
		gw := &fakeGateway{}
		require.NoError(t, testClient(gw).UpdateSessionDetails(context.Background(), 7, domain.SessionPatch{}))
		assert.Empty(t, gw.calls, "nothing to send, nothing sent")
	})
}

func TestClient_OutboundFlights(t *testing.T) {
	gw := &fakeGateway{body: `[
		{"token": "t1", "price": 199.99, "currency": "EUR", "flights": [
			{"airline": "XA", "departure": "VIE", "departure_time": "08:00",
			 "arrival": "BCN", "arrival_time": "10:20", "duration": "2h20m"}
		]},
		{"token": "t2", "price": 240.00, "currency": "EUR", "flights": []}
	]`}

	params := domain.TripParams{
		Departure: "VIE", Destination: "BCN",
		OutboundDate: "2026-10-01", ReturnDate: "2026-10-08",
		Adults: 2, Rooms: 1,
	}
	options, err := testClient(gw).OutboundFlights(context.Background(), NewFlightsRequest(7, params))
	require.NoError(t, err)

	require.Len(t, options, 2)
	assert.Equal(t, "t1", options[0].Token)
	assert.Len(t, options[0].Legs, 1)
	assert.Equal(t, "/search/getOutboundFlights", gw.calls[0].path)

	req := gw.calls[0].body.(FlightsRequest)
	assert.Empty(t, req.Token, "an outbound search carries no token")
	assert.Equal(t, "BCN", req.Arrival)
}

func TestClient_InboundFlights_CarriesToken(t *testing.T) {
	gw := &fakeGateway{body: `[]`}
	req := FlightsRequest{SessionID: 7, Token: "departure-token", Departure: "VIE", Arrival: "BCN"}
	_, err := testClient(gw).InboundFlights(context.Background(), req)
	require.NoError(t, err)

	sent := gw.calls[0].body.(FlightsRequest)
	assert.Equal(t, "departure-token", sent.Token)
	assert.Equal(t, "/search/getInboundFlights", gw.calls[0].path)
}

func TestClient_HotelDetails(t *testing.T) {
	gw := &fakeGateway{body: `{"hotel_id": "h1", "url": "https://x/book/h1", "amenities": ["wifi"]}`}
	details, err := testClient(gw).HotelDetails(context.Background(), HotelDetailsRequest{SessionID: 7, HotelID: "h1"})
	require.NoError(t, err)

	assert.Equal(t, "https://x/book/h1", details.URL)
	assert.Equal(t, "/search/getHotelDetails", gw.calls[0].path)
}

func TestClient_BookFlight(t *testing.T) {
	gw := &fakeGateway{body: `{"booking_url": "https://x/checkout/123"}`}
	booking, err := testClient(gw).BookFlight(context.Background(), FlightsRequest{SessionID: 7, Token: "booking-token"})
	require.NoError(t, err)

	assert.Equal(t, "https://x/checkout/123", booking.BookingURL)
	assert.Equal(t, "/search/bookFlight", gw.calls[0].path)
}

func TestClient_BookAccommodation_Rejected(t *testing.T) {
	gw := &fakeGateway{status: http.StatusUnprocessableEntity, body: `{"detail":"Could not book accomodation"}`}
	err := testClient(gw).BookAccommodation(context.Background(), AccommodationBookingRequest{
		SessionID: 7, BookingURL: "https://x/book/h1",
	})
	require.ErrorIs(t, err, apperrors.ErrBookingRejected)
}
