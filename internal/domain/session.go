// Package domain holds the data model for a trip-planning session: the
// server-owned session record, trip parameters, search result shapes, and
// the booking stage machine.
package domain

// Session stage values as the backend reports them.
const (
	SessionStageDiscovery = "discovery"
	SessionStageOptions   = "options"
	SessionStageItinerary = "itinerary"
	SessionStageBooking   = "booking"
	SessionStageCompleted = "completed"
)

// PlanningSession mirrors the server-owned vacation session record. The
// client holds an optimistic local copy; the server copy is canonical.
type PlanningSession struct {
	ID           int    `json:"id"`
	UserID       string `json:"user_id"`
	CurrentStage string `json:"current_stage"`

	Currency    string `json:"currency,omitempty"`
	Departure   string `json:"departure,omitempty"`
	Destination string `json:"destination,omitempty"`
	FromDate    string `json:"from_date,omitempty"`
	ToDate      string `json:"to_date,omitempty"`

	Adults        int   `json:"adults,omitempty"`
	Children      int   `json:"children,omitempty"`
	ChildAges     []int `json:"child_ages,omitempty"`
	InfantsInSeat int   `json:"infants_in_seat,omitempty"`
	InfantsOnLap  int   `json:"infants_on_lap,omitempty"`
	Rooms         int   `json:"room_qty,omitempty"`

	FlightsURL       string `json:"flights_url,omitempty"`
	AccomodationURL  string `json:"accomodation_url,omitempty"`
	IsActive         bool   `json:"is_active"`
	BookedFlights    bool   `json:"booked_flights"`
	BookedAccommodat bool   `json:"booked_accomodation"`
}

// SessionPatch is a field-level partial update for the session record.
// Nil fields are omitted from the PATCH body, so a patch touches exactly
// the fields the caller set.
type SessionPatch struct {
	Departure     *string `json:"departure,omitempty"`
	Destination   *string `json:"destination,omitempty"`
	FromDate      *string `json:"from_date,omitempty"`
	ToDate        *string `json:"to_date,omitempty"`
	Adults        *int    `json:"adults,omitempty"`
	Children      *int    `json:"children,omitempty"`
	ChildAges     *[]int  `json:"child_ages,omitempty"`
	InfantsInSeat *int    `json:"infants_in_seat,omitempty"`
	InfantsOnLap  *int    `json:"infants_on_lap,omitempty"`
	Rooms         *int    `json:"room_qty,omitempty"`
	Budget        *int    `json:"budget,omitempty"`
	FlightsURL    *string `json:"flights_url,omitempty"`
	AccomodURL    *string `json:"accomodation_url,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p SessionPatch) IsEmpty() bool {
	return p == SessionPatch{}
}
