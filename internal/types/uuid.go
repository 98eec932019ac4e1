package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_01HZX3M4T8V1D7K2Q9R5B6N0CE
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_INVOICE     = "inv"
	UUID_PREFIX_CUSTOMER    = "cust"
	UUID_PREFIX_VEHICLE     = "veh"
	UUID_PREFIX_TRANSPORTER = "trn"
	UUID_PREFIX_CONTRACT    = "ctr"
	UUID_PREFIX_EVENT       = "evt"
)
