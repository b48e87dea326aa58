package network

import "time"

// PassengerEventKind is the closed set of passenger movements this system
// records (§3).
type PassengerEventKind string

const (
	PassengerIn  PassengerEventKind = "in"
	PassengerOut PassengerEventKind = "out"
)

// PassengerEvent is one decoded occupancy change, as delivered in a MESSAGE
// body on the /passengers destination: {datetime, passenger_event,
// station_id}.
type PassengerEvent struct {
	Timestamp time.Time          `json:"datetime"`
	Kind      PassengerEventKind `json:"passenger_event"`
	StationID string             `json:"station_id"`
}
