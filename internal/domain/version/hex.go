package version

import (
	"fmt"
	"math/big"
	"strings"
)

const hexBase = 16

// IncrementHex adds delta to a hexadecimal counter and returns the new value
// in lowercase hex without padding. Hashes longer than 64 bits are supported.
// An empty counter counts as zero. A negative result is rejected rather than
// clamped, so a misconfigured delta never silently rewinds the commit.
func IncrementHex(hex string, delta int64) (string, error) {
	value := strings.TrimSpace(hex)
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")

	counter := new(big.Int)
	if value != "" {
		if _, ok := counter.SetString(value, hexBase); !ok || counter.Sign() < 0 {
			return "", fmt.Errorf("%w: %q is not a hexadecimal number", ErrInvalidIncrement, hex)
		}
	}

	counter.Add(counter, big.NewInt(delta))

	if counter.Sign() < 0 {
		return "", fmt.Errorf("%w: %q%+d is negative", ErrInvalidIncrement, hex, delta)
	}

	return counter.Text(hexBase), nil
}
