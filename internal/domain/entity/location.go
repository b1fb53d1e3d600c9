package entity

import (
	"time"
)

// Location represents one entry of the location directory: a spotting
// location and the IANA timezone its daily partitions are bucketed in.
type Location struct {
	ID         uint
	LocationID string
	Name       string
	TzName     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
