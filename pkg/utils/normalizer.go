package utils

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"flightspotter-service/internal/domain/entity"
)

// Accepted source field names per canonical attribute, in precedence order.
// Producers name the same field differently; the first alias present with a
// non-empty value wins.
var (
	countryAliases      = []string{"Country", "OriginCountry", "origin_country"}
	flightAliases       = []string{"Flight", "Callsign", "CallSign", "callsign", "flight"}
	timeAliases         = []string{"Time", "Seen", "SeenTime", "TimeUTC", "TimeUtc", "timestamp", "PositionTimestampUtc", "Timestamp"}
	aircraftCodeAliases = []string{"AircraftCode", "Aircraft", "Icao24", "ICAO", "Icao", "Hex", "ModeS", "ModeSCode"}
	registrationAliases = []string{"Registration", "Reg", "registration"}
	aircraftTypeAliases = []string{"AircraftType", "Type", "aircraft_type"}
	altitudeAliases     = []string{"Altitude", "Alt", "altitude"}
	headingAliases      = []string{"Heading", "Course", "heading"}
	latitudeAliases     = []string{"Latitude", "Lat", "latitude"}
	longitudeAliases    = []string{"Longitude", "Lon", "Lng", "longitude"}
)

// Layouts tried for the general date-time parse, local time assumed.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FlightNormalizer converts raw telemetry rows into canonical flight records
type FlightNormalizer struct {
	prefixes *PrefixResolver
	clock    clockwork.Clock
}

// NewFlightNormalizer creates a new flight normalizer
func NewFlightNormalizer(prefixes *PrefixResolver, clock clockwork.Clock) *FlightNormalizer {
	return &FlightNormalizer{
		prefixes: prefixes,
		clock:    clock,
	}
}

// Normalize maps a raw row onto the canonical record shape. Deterministic for
// identical input and a fixed clock; never fails, absent attributes stay "".
func (n *FlightNormalizer) Normalize(raw *entity.TableRecord) entity.Flight {
	flight := entity.Flight{
		PartitionKey: raw.PartitionKey,
		RowKey:       raw.RowKey,
		Country:      firstProperty(raw, countryAliases),
		Flight:       strings.TrimSpace(firstProperty(raw, flightAliases)),
		Time:         firstProperty(raw, timeAliases),
		AircraftCode: firstProperty(raw, aircraftCodeAliases),
		Registration: firstProperty(raw, registrationAliases),
		AircraftType: firstProperty(raw, aircraftTypeAliases),
		Altitude:     firstProperty(raw, altitudeAliases),
		Heading:      firstProperty(raw, headingAliases),
		Latitude:     firstProperty(raw, latitudeAliases),
		Longitude:    firstProperty(raw, longitudeAliases),
	}

	// Producers commonly encode the callsign in the row key
	if flight.Flight == "" {
		flight.Flight = raw.RowKey
	}

	if flight.Country == "" && flight.Registration != "" {
		flight.Country = n.prefixes.ResolveCountry(flight.Registration)
	}
	if flight.Registration != "" {
		if code, ok := n.prefixes.ResolveCode(flight.Registration); ok {
			flight.CountryCode = code
		}
	}
	if flight.CountryCode == "" && flight.Country != "" && flight.Country != UnknownCountry {
		if code, ok := n.prefixes.ResolveCodeFromCountryName(flight.Country); ok {
			flight.CountryCode = code
		}
	}

	flight.TimeAt = n.parseTime(flight.Time)

	return flight
}

// parseTime derives a point in time from the raw string: a duration-of-day
// value is projected onto the current local date, anything else goes through
// the general layouts. Both failing leaves the raw string as the only record.
func (n *FlightNormalizer) parseTime(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	if tod, err := time.Parse("15:04:05", trimmed); err == nil {
		now := n.clock.Now()
		t := time.Date(now.Year(), now.Month(), now.Day(),
			tod.Hour(), tod.Minute(), tod.Second(), 0, time.Local)
		return &t
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return &t
		}
	}

	return nil
}

func firstProperty(raw *entity.TableRecord, aliases []string) string {
	for _, alias := range aliases {
		if v := raw.Property(alias); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
