package domain

// HotelOption is one accommodation from a search, keyed by the provider's
// hotel id for later detail and booking calls.
type HotelOption struct {
	HotelID       string   `json:"hotel_id"`
	Name          string   `json:"hotel_name"`
	Latitude      float64  `json:"latitude,omitempty"`
	Longitude     float64  `json:"longitude,omitempty"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	PhotoURLs     []string `json:"photo_urls,omitempty"`
	ReviewScore   float64  `json:"reviewScore,omitempty"`
	ReviewCount   int      `json:"reviewCount,omitempty"`
	PropertyClass int      `json:"propertyClass,omitempty"`

	// BookingURL is filled in from the hotel details lookup; empty until
	// the details call has succeeded.
	BookingURL string `json:"-"`
}

// HotelDetails is the expanded view of a single accommodation, including
// the booking URL the mature booking flow submits.
type HotelDetails struct {
	HotelID            string   `json:"hotel_id"`
	URL                string   `json:"url"`
	Description        string   `json:"description,omitempty"`
	Photos             []string `json:"photos,omitempty"`
	Amenities          []string `json:"amenities,omitempty"`
	CancellationPolicy string   `json:"cancellation_policy,omitempty"`
	PrepaymentPolicy   string   `json:"prepayment_policy,omitempty"`
	BedDetails         string   `json:"bed_details,omitempty"`
}
