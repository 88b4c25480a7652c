package domain

// FlightLeg is one segment of a flight option.
type FlightLeg struct {
	Airline       string `json:"airline"`
	AirlineLogo   string `json:"airline_logo,omitempty"`
	Departure     string `json:"departure"`
	DepartureTime string `json:"departure_time"`
	Arrival       string `json:"arrival"`
	ArrivalTime   string `json:"arrival_time"`
	Duration      string `json:"duration"`
}

// FlightOption is one bookable fare from a flight search. Token is the
// provider-issued handle used to scope the follow-up call: a departure
// token for outbound results, a booking token for inbound results.
type FlightOption struct {
	Token    string      `json:"token"`
	Price    float64     `json:"price"`
	Currency string      `json:"currency"`
	Legs     []FlightLeg `json:"flights"`
}

// FlightBooking is the provider's confirmation for a committed flight pair.
type FlightBooking struct {
	BookingURL string `json:"booking_url"`
}
