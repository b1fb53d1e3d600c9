package entity

import (
	"time"
)

// AircraftPartition is the fixed partition key for all aircraft master records.
const AircraftPartition = "Aircraft"

// Aircraft is the master record for one airframe, keyed by its ICAO24 hex
// address. Attributes are filled from the bulk metadata sync and never
// overwritten once populated.
type Aircraft struct {
	ID               string    `bson:"_id,omitempty"`
	PartitionKey     string    `bson:"partitionKey"`
	RowKey           string    `bson:"rowKey"` // ICAO24, uppercased - unique within partition
	IcaoAircraftType string    `bson:"icaoAircraftType"`
	IcaoOperator     string    `bson:"icaoOperator"`
	Registration     string    `bson:"registration"`
	Version          int64     `bson:"version"` // optimistic concurrency token
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}
