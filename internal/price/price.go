// Package price implements the fixed-point price type used as the matching
// engine's sort key. A Price is a 4-decimal-digit scaled integer: the
// unscaled value is the price multiplied by 10000.
package price

import (
	"fmt"
	"strconv"
	"strings"
)

// Scale is the number of fractional decimal digits a Price carries.
const Scale = 4

const scaleFactor = 10000

// Price is an exact fixed-point price, stored as an integer scaled by
// 10^Scale. The zero value represents 0.
type Price struct {
	unscaled int64
}

// FromUnscaled builds a Price directly from its scaled integer form.
func FromUnscaled(unscaled int64) Price {
	return Price{unscaled: unscaled}
}

// Unscaled returns the underlying scaled integer.
func (p Price) Unscaled() int64 {
	return p.unscaled
}

// Parse converts a decimal string into a Price. The string is split at the
// first '.'; the left side is the integer part, the right side is padded or
// truncated to exactly Scale digits. A string with no '.' is treated as
// whole scale-adjusted units. Returns InvalidPrice for anything that is not
// a sign followed by digits (and at most one '.').
func Parse(s string) (Price, error) {
	if s == "" {
		return Price{}, &InvalidPriceError{Input: s}
	}

	sign := ""
	rest := s
	if rest[0] == '+' || rest[0] == '-' {
		if rest[0] == '-' {
			sign = "-"
		}
		rest = rest[1:]
	}

	integerPart := rest
	fractionPart := ""
	if idx := strings.IndexByte(rest, '.'); idx >= 0 {
		integerPart = rest[:idx]
		fractionPart = rest[idx+1:]
		if strings.IndexByte(fractionPart, '.') >= 0 {
			return Price{}, &InvalidPriceError{Input: s}
		}
	}
	if integerPart == "" {
		integerPart = "0"
	}
	if !isDigits(integerPart) || !isDigits(fractionPart) {
		return Price{}, &InvalidPriceError{Input: s}
	}

	if len(fractionPart) < Scale {
		fractionPart += strings.Repeat("0", Scale-len(fractionPart))
	} else {
		fractionPart = fractionPart[:Scale]
	}

	unscaled, err := strconv.ParseInt(sign+integerPart+fractionPart, 10, 64)
	if err != nil {
		return Price{}, &InvalidPriceError{Input: s}
	}
	return Price{unscaled: unscaled}, nil
}

// MustParse is Parse but panics on error; reserved for constants in tests.
func MustParse(s string) Price {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the price back to decimal text: integer-divide by the
// scale factor, and if the remainder is zero emit only the integer part;
// otherwise append '.' and the zero-padded, trailing-zero-trimmed remainder.
func (p Price) String() string {
	neg := p.unscaled < 0
	u := p.unscaled
	if neg {
		u = -u
	}
	whole := u / scaleFactor
	frac := u % scaleFactor

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatInt(whole, 10))
	if frac == 0 {
		return sb.String()
	}

	fracStr := fmt.Sprintf("%0*d", Scale, frac)
	fracStr = strings.TrimRight(fracStr, "0")
	sb.WriteByte('.')
	sb.WriteString(fracStr)
	return sb.String()
}

// MarshalJSON renders the price as a quoted decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = unquoted
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Equal reports whether two prices have the same unscaled value.
func (p Price) Equal(o Price) bool { return p.unscaled == o.unscaled }

// Less reports whether p sorts before o.
func (p Price) Less(o Price) bool { return p.unscaled < o.unscaled }

// Compare returns -1, 0 or 1 as p is less than, equal to, or greater than o.
func (p Price) Compare(o Price) int {
	switch {
	case p.unscaled < o.unscaled:
		return -1
	case p.unscaled > o.unscaled:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the price is exactly zero.
func (p Price) IsZero() bool { return p.unscaled == 0 }

// InvalidPriceError is returned when parsing a malformed decimal string.
type InvalidPriceError struct {
	Input string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price: %q", e.Input)
}
