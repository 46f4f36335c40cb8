// Package setting defines keyed configuration records.
//
// Values are arbitrary JSON-representable data (numbers, strings, nested
// objects) so that admin tooling can store both scalar rates and
// structured price points under a single key space. The engine consumes
// settings read-only; absence of a key is never an error.
package setting

import (
	"github.com/xraph/credits/types"
)

// Well-known configuration keys.
const (
	// KeyPointsPer100 holds the number of credits earned per 100 currency
	// units of order value. A value of 5 means an earn rate of 0.05.
	KeyPointsPer100 = "pointsPer100"

	// KeyCreditBooster holds an object with the booster configuration,
	// e.g. {"multiplier": 2, "price": 49}.
	KeyCreditBooster = "creditBooster"

	// KeyEarlyUnlock holds an object with the early unlock configuration,
	// e.g. {"price": 29}.
	KeyEarlyUnlock = "earlyUnlock"

	// KeyPremiumWallet holds an object with the premium wallet
	// configuration, e.g. {"price": 99}.
	KeyPremiumWallet = "premiumWallet"
)

// Setting is one key/value configuration record.
type Setting struct {
	types.Entity
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Int64 coerces the value to an int64. Returns (0, false) if the value
// is absent or not numeric. JSON decoding yields float64 for numbers, so
// both forms are accepted.
func (s *Setting) Int64() (int64, bool) {
	if s == nil {
		return 0, false
	}
	switch v := s.Value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// Float64 coerces the value to a float64. Returns (0, false) if the value
// is absent or not numeric.
func (s *Setting) Float64() (float64, bool) {
	if s == nil {
		return 0, false
	}
	switch v := s.Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Field looks up a named field of an object-valued setting and coerces it
// to int64. Returns (0, false) if the value is not an object, the field is
// absent, or the field is not numeric.
func (s *Setting) Field(name string) (int64, bool) {
	if s == nil {
		return 0, false
	}
	obj, ok := s.Value.(map[string]any)
	if !ok {
		return 0, false
	}
	field := &Setting{Value: obj[name]}
	return field.Int64()
}
