package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a monetary value in paisa (hundredths of a rupee).
// Arithmetic stays in integers; the two-decimal string form only
// exists at the gateway boundary.
type Amount int64

// FromPaisa wraps a raw paisa count.
func FromPaisa(p int64) Amount {
	return Amount(p)
}

// Parse converts a decimal string such as "200", "200.5" or "200.50"
// into an Amount. Only unsigned digit strings with at most two
// fractional digits pass; signs, a bare trailing dot and anything
// non-numeric are rejected.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		if frac == "" {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	if whole == "" || len(frac) > 2 || !allDigits(whole) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	paisa := int64(0)
	if frac != "" {
		p, err := strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		paisa = int64(p)
		if len(frac) == 1 {
			paisa *= 10
		}
	}

	return Amount(units*100 + paisa), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the amount with exactly two decimals, the format the
// gateway signs over.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%02d", int64(a)/100, int64(a)%100)
}

// MulQty returns the amount for qty units at this unit price.
func (a Amount) MulQty(qty int) Amount {
	return a * Amount(qty)
}

// WithinTolerance reports whether a and b differ by at most tol paisa.
func WithinTolerance(a, b Amount, tol int64) bool {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return d <= tol
}
