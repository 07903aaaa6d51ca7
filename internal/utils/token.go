package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateCorrelationToken produces the idempotency key shared with the
// payment gateway. Time prefix keeps tokens sortable in support tooling,
// the random suffix keeps them unique across concurrent checkouts.
func GenerateCorrelationToken() string {
	now := time.Now().UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 1000000)
	}

	return fmt.Sprintf(
		"TXN-%s-%03d-%06d",
		datePart,
		millis,
		n.Int64(),
	)
}
