package ledger

import (
	"errors"
	"fmt"
)

// Byte limits the Token Metadata program enforces on the data record.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
)

var ErrFieldTooLong = errors.New("exceeds token metadata limit")

// CheckDataLengths rejects a name, symbol or uri the program would refuse.
func CheckDataLengths(name, symbol, uri string) error {
	fields := []struct {
		field string
		value string
		max   int
	}{
		{"name", name, MaxNameLength},
		{"symbol", symbol, MaxSymbolLength},
		{"uri", uri, MaxURILength},
	}

	for _, f := range fields {
		if len(f.value) > f.max {
			return fmt.Errorf("%w: %s is %d bytes, max %d", ErrFieldTooLong, f.field, len(f.value), f.max)
		}
	}
	return nil
}
