package exprtree

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
)

// toRat converts a Go numeric value into an exact rational. Non-numeric
// values and non-finite floats fail with ErrTypeKind.
func toRat(v any) (*big.Rat, error) {
	switch n := v.(type) {
	case int:
		return new(big.Rat).SetInt64(int64(n)), nil
	case int8:
		return new(big.Rat).SetInt64(int64(n)), nil
	case int16:
		return new(big.Rat).SetInt64(int64(n)), nil
	case int32:
		return new(big.Rat).SetInt64(int64(n)), nil
	case int64:
		return new(big.Rat).SetInt64(n), nil
	case uint:
		return new(big.Rat).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Rat).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Rat).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Rat).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Rat).SetUint64(n), nil
	case float32:
		return floatRat(float64(n))
	case float64:
		return floatRat(n)
	case *big.Int:
		if n == nil {
			break
		}
		return new(big.Rat).SetInt(n), nil
	case *big.Rat:
		if n == nil {
			break
		}
		return new(big.Rat).Set(n), nil
	case big.Rat:
		return new(big.Rat).Set(&n), nil
	}
	return nil, fmt.Errorf("%w: number from %T", ErrTypeKind, v)
}

func floatRat(f float64) (*big.Rat, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: number from non-finite float %v", ErrTypeKind, f)
	}
	return new(big.Rat).SetFloat64(f), nil
}

// toName accepts strings, byte and rune slices, and named string types.
func toName(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case []rune:
		return string(s), nil
	}
	if v != nil {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	}
	return "", fmt.Errorf("%w: symbol from %T", ErrTypeKind, v)
}

// formatNumber renders integers in base 10 and other values through their
// nearest float64.
func formatNumber(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	f, _ := r.Float64()
	return strconv.FormatFloat(f, 'g', -1, 64)
}
