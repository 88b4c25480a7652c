package domain

import (
	pkgvalidator "github.com/arthurpeter/VacationAgent/pkg/validator"
)

// TripParams are the user-editable trip parameters a search runs against.
// Dates use the backend's YYYY-MM-DD format.
type TripParams struct {
	Departure    string `json:"departure" validate:"required"`
	Destination  string `json:"destination" validate:"required"`
	OutboundDate string `json:"outbound_date" validate:"required,datetime=2006-01-02"`
	ReturnDate   string `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	Adults        int   `json:"adults" validate:"gte=1,lte=9"`
	Children      int   `json:"children" validate:"gte=0,lte=8"`
	ChildAges     []int `json:"child_ages,omitempty" validate:"dive,gte=0,lte=17"`
	InfantsInSeat int   `json:"infants_in_seat" validate:"gte=0,lte=4"`
	InfantsOnLap  int   `json:"infants_on_lap" validate:"gte=0,lte=4"`

	Rooms  int `json:"room_qty" validate:"gte=1"`
	Budget int `json:"budget,omitempty" validate:"gte=0"`

	SortBy int `json:"sort_by,omitempty"`
	Stops  int `json:"stops,omitempty"`
}

// Validate checks the parameters against their tags plus the cross-field
// invariants the tags cannot express.
func (p *TripParams) Validate() error {
	if err := pkgvalidator.Validate(p); err != nil {
		return err
	}
	if p.Rooms > p.Adults {
		// Should be unreachable when mutations go through SetAdults/SetRooms.
		p.Rooms = p.Adults
	}
	return nil
}

// SetAdults updates the adult count and clamps the room quantity so it
// never exceeds the number of adults. The clamp happens in the same update
// cycle: reducing adults below the current room quantity immediately
// reduces rooms to match.
func (p *TripParams) SetAdults(n int) {
	if n < 1 {
		n = 1
	}
	p.Adults = n
	if p.Rooms > n {
		p.Rooms = n
	}
}

// SetRooms updates the room quantity, capped at the adult count and
// floored at one.
func (p *TripParams) SetRooms(n int) {
	if n < 1 {
		n = 1
	}
	if n > p.Adults {
		n = p.Adults
	}
	p.Rooms = n
}

// Travelers returns the total seat-occupying traveler count.
func (p *TripParams) Travelers() int {
	return p.Adults + p.Children + p.InfantsInSeat
}
