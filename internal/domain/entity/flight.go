package entity

import (
	"time"
)

// Flight is the canonical, normalized view of one telemetry row. All string
// attributes default to "" when the source row carries nothing usable; TimeAt
// is nil when no point in time could be derived from the raw Time string.
type Flight struct {
	PartitionKey string     `json:"partitionKey"`
	RowKey       string     `json:"rowKey"`
	Country      string     `json:"country"`
	CountryCode  string     `json:"countryCode,omitempty"` // ISO2, "" when unknown
	Flight       string     `json:"flight"`
	Time         string     `json:"time"`
	TimeAt       *time.Time `json:"timeAt,omitempty"`
	AircraftCode string     `json:"aircraftCode"`
	Registration string     `json:"registration"`
	AircraftType string     `json:"aircraftType"`
	Altitude     string     `json:"altitude"`
	Heading      string     `json:"heading"`
	Latitude     string     `json:"latitude"`
	Longitude    string     `json:"longitude"`
}
