package entity

// TableRecord is a raw telemetry row as stored: a partition/row key pair plus
// a free-form property bag. Producers disagree on field names, so the bag is
// kept verbatim and resolved into a Flight by the normalizer.
type TableRecord struct {
	ID           string            `bson:"_id,omitempty" json:"-"`
	PartitionKey string            `bson:"partitionKey" json:"partitionKey"`
	RowKey       string            `bson:"rowKey" json:"rowKey"`
	Properties   map[string]string `bson:"properties" json:"properties"`
}

// Property returns the named property, or "" when absent.
func (r *TableRecord) Property(name string) string {
	if r.Properties == nil {
		return ""
	}
	return r.Properties[name]
}
