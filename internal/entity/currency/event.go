package currency

import "time"

// IngestedEvent announces that an ingestion run wrote new rows.
type IngestedEvent struct {
	Date  time.Time
	Saved int
	Codes []string
}
