package conf

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/confkit/store"
)

func toString(key string, v store.Value) (string, error) {
	switch v.Kind() {
	case store.KindString:
		return v.Str(), nil
	case store.KindInt:
		return strconv.FormatInt(v.IntVal(), 10), nil
	case store.KindFloat:
		f := v.FloatVal()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", typeMismatchErr(key, v.Kind(), "String")
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case store.KindBool:
		return strconv.FormatBool(v.BoolVal()), nil
	default:
		return "", typeMismatchErr(key, v.Kind(), "String")
	}
}

func toBool(key string, v store.Value) (bool, error) {
	switch v.Kind() {
	case store.KindBool:
		return v.BoolVal(), nil
	case store.KindString:
		switch strings.ToLower(v.Str()) {
		case "true", "yes":
			return true, nil
		case "false", "no":
			return false, nil
		}
		return false, parseErr(key, v.Str())
	default:
		return false, typeMismatchErr(key, v.Kind(), "Bool")
	}
}

func toInt(key string, v store.Value) (int64, error) {
	switch v.Kind() {
	case store.KindInt:
		return v.IntVal(), nil
	case store.KindFloat:
		f := v.FloatVal()
		i := int64(f)
		if float64(i) != f {
			return 0, typeMismatchErr(key, v.Kind(), "Integer")
		}
		return i, nil
	case store.KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64)
		if err != nil {
			return 0, causeErr(key, err)
		}
		return i, nil
	case store.KindBool:
		return 0, typeMismatchErr(key, v.Kind(), "Integer")
	default:
		return 0, typeMismatchErr(key, v.Kind(), "Integer")
	}
}

func toUint(key string, v store.Value) (uint64, error) {
	switch v.Kind() {
	case store.KindInt:
		i := v.IntVal()
		if i < 0 {
			return 0, typeMismatchErr(key, v.Kind(), "Unsigned")
		}
		return uint64(i), nil
	case store.KindString:
		u, err := strconv.ParseUint(strings.TrimSpace(v.Str()), 10, 64)
		if err != nil {
			return 0, causeErr(key, err)
		}
		return u, nil
	default:
		i, err := toInt(key, v)
		if err != nil {
			return 0, err
		}
		if i < 0 {
			return 0, typeMismatchErr(key, v.Kind(), "Unsigned")
		}
		return uint64(i), nil
	}
}

func toFloat(key string, v store.Value) (float64, error) {
	switch v.Kind() {
	case store.KindFloat:
		return v.FloatVal(), nil
	case store.KindInt:
		return float64(v.IntVal()), nil
	case store.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err != nil {
			return 0, causeErr(key, err)
		}
		return f, nil
	default:
		return 0, typeMismatchErr(key, v.Kind(), "Float")
	}
}

// toDuration accepts Go duration literals ("1h30m") for strings and treats
// bare integers as seconds.
func toDuration(key string, v store.Value) (time.Duration, error) {
	switch v.Kind() {
	case store.KindString:
		d, err := time.ParseDuration(strings.TrimSpace(v.Str()))
		if err != nil {
			return 0, causeErr(key, err)
		}
		return d, nil
	case store.KindInt:
		return time.Duration(v.IntVal()) * time.Second, nil
	case store.KindFloat:
		return time.Duration(v.FloatVal() * float64(time.Second)), nil
	default:
		return 0, typeMismatchErr(key, v.Kind(), "Duration")
	}
}
