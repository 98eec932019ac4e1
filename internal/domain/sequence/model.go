package sequence

import (
	"time"
)

// Counter is the highest sequence issued in one partition. It lives in the counters
// collection under the partition's sequence key, e.g. invoices_b2c.
type Counter struct {
	Seq       int       `json:"seq"`
	UpdatedAt time.Time `json:"updated_at"`
}
