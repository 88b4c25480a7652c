package domain

// BookedFlags tracks the commit state of the two independently bookable
// resource units. Each flag is monotonic: once true it stays true until an
// explicit reset.
type BookedFlags struct {
	Flights bool `json:"flights"`
	Hotel   bool `json:"hotel"`
}

// Complete reports whether both units are committed.
func (b BookedFlags) Complete() bool {
	return b.Flights && b.Hotel
}

// SelectionSet holds the currently chosen outbound flight, inbound flight,
// and accommodation, plus the per-resource booked flags.
type SelectionSet struct {
	Outbound *FlightOption `json:"outbound,omitempty"`
	Inbound  *FlightOption `json:"inbound,omitempty"`
	Hotel    *HotelOption  `json:"hotel,omitempty"`
	Booked   BookedFlags   `json:"booked"`
}

// AnySelected reports whether anything is selected. The confirmation
// summary is keyed off this, not off the stage: choosing a hotel with no
// flight search done must still surface the summary.
func (s *SelectionSet) AnySelected() bool {
	return s.Outbound != nil || s.Inbound != nil || s.Hotel != nil
}

// FlightPairComplete reports whether both legs are chosen.
func (s *SelectionSet) FlightPairComplete() bool {
	return s.Outbound != nil && s.Inbound != nil
}

// ClearFlights drops both flight legs. Retraction of dependent state
// (stage, inbound result list) is the orchestrator's job; the booked flag
// is left alone because booked resources survive everything short of a
// reset.
func (s *SelectionSet) ClearFlights() {
	s.Outbound = nil
	s.Inbound = nil
}

// Reset clears all selections and both booked flags.
func (s *SelectionSet) Reset() {
	s.Outbound = nil
	s.Inbound = nil
	s.Hotel = nil
	s.Booked = BookedFlags{}
}
