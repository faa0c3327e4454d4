package conf

import (
	"encoding"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/jonwraymond/confkit/key"
	"github.com/jonwraymond/confkit/store"
)

var durationType = reflect.TypeOf(time.Duration(0))

// decode resolves the value at the cursor into rv. def is the default
// raw string from a struct tag, if any; it applies only when the key has
// no stored scalar.
func (r *resolution) decode(rv reflect.Value, def *string) error {
	if rv.CanAddr() {
		addr := rv.Addr().Interface()
		if rb, ok := addr.(refBindable); ok {
			return rb.bindInto(r)
		}
		if tu, ok := addr.(encoding.TextUnmarshaler); ok {
			s, err := r.scalarString(def)
			if err != nil {
				return err
			}
			if err := tu.UnmarshalText([]byte(s)); err != nil {
				return causeErr(r.path.String(), err)
			}
			return nil
		}
	}

	if rv.Type() == durationType {
		v, ok, err := r.value(def)
		if err != nil {
			return err
		}
		if !ok || isEmptyString(v) {
			return notFoundErr(r.path.String())
		}
		d, err := toDuration(r.path.String(), v)
		if err != nil {
			return err
		}
		rv.SetInt(int64(d))
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		elem := reflect.New(rv.Type().Elem())
		if err := r.decode(elem.Elem(), def); err != nil {
			if errors.Is(err, ErrNotFound) {
				rv.SetZero()
				return nil
			}
			return err
		}
		rv.Set(elem)
		return nil

	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return r.decodeScalar(rv, def)

	case reflect.Slice:
		return r.decodeSlice(rv)

	case reflect.Map:
		return r.decodeMap(rv)

	case reflect.Struct:
		return r.decodeStruct(rv)

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return typeMismatchErr(r.path.String(), store.KindString, rv.Type().String())
		}
		return r.decodeAny(rv, def)

	default:
		return typeMismatchErr(r.path.String(), store.KindString, rv.Type().String())
	}
}

// scalarString resolves the cursor as a plain string for text-unmarshaling
// targets.
func (r *resolution) scalarString(def *string) (string, error) {
	v, ok, err := r.value(def)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", notFoundErr(r.path.String())
	}
	return toString(r.path.String(), v)
}

func isEmptyString(v store.Value) bool {
	return v.Kind() == store.KindString && v.Str() == ""
}

func (r *resolution) decodeScalar(rv reflect.Value, def *string) error {
	k := r.path.String()
	v, ok, err := r.value(def)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundErr(k)
	}
	// The empty string counts as absent for every target but string itself.
	if isEmptyString(v) && rv.Kind() != reflect.String {
		return notFoundErr(k)
	}

	switch rv.Kind() {
	case reflect.String:
		s, err := toString(k, v)
		if err != nil {
			return err
		}
		rv.SetString(s)

	case reflect.Bool:
		b, err := toBool(k, v)
		if err != nil {
			return err
		}
		rv.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt(k, v)
		if err != nil {
			return err
		}
		if rv.OverflowInt(i) {
			return typeMismatchErr(k, v.Kind(), rv.Type().String())
		}
		rv.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := toUint(k, v)
		if err != nil {
			return err
		}
		if rv.OverflowUint(u) {
			return typeMismatchErr(k, v.Kind(), rv.Type().String())
		}
		rv.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := toFloat(k, v)
		if err != nil {
			return err
		}
		if rv.OverflowFloat(f) {
			return typeMismatchErr(k, v.Kind(), rv.Type().String())
		}
		rv.SetFloat(f)
	}
	return nil
}

// decodeSlice fills rv from index children [0..bound). Holes surface as
// ErrNotFound unless the element type is a pointer.
func (r *resolution) decodeSlice(rv reflect.Value) error {
	_, bound := r.snap.Children(r.path.String())
	out := reflect.MakeSlice(rv.Type(), bound, bound)
	for i := 0; i < bound; i++ {
		r.path.PushIndex(i)
		err := r.decode(out.Index(i), nil)
		r.path.Pop()
		if err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (r *resolution) decodeMap(rv reflect.Value) error {
	t := rv.Type()
	if t.Key().Kind() != reflect.String {
		return typeMismatchErr(r.path.String(), store.KindString, t.String())
	}
	names, _ := r.snap.Children(r.path.String())
	out := reflect.MakeMapWithSize(t, len(names))
	for _, name := range names {
		elem := reflect.New(t.Elem()).Elem()
		r.path.PushSegments([]key.Segment{key.Name(name)})
		err := r.decode(elem, nil)
		r.path.Pop()
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
		out.SetMapIndex(reflect.ValueOf(name).Convert(t.Key()), elem)
	}
	rv.Set(out)
	return nil
}

// decodeStruct walks exported fields. The conf tag renames a field, "-"
// skips it, default supplies a fallback raw value (placeholders included)
// and validate holds an expression evaluated against the decoded value.
func (r *resolution) decodeStruct(rv reflect.Value) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("conf")
		if name == "-" {
			continue
		}
		if name == "" {
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				if err := r.decodeStruct(rv.Field(i)); err != nil {
					return err
				}
				continue
			}
			name = strings.ToLower(f.Name)
		}

		var def *string
		if d, ok := f.Tag.Lookup("default"); ok {
			def = &d
		}

		r.path.Push(name)
		err := r.decode(rv.Field(i), def)
		if err == nil {
			if rule, ok := f.Tag.Lookup("validate"); ok {
				err = validateField(r.path.String(), rule, rv.Field(i).Interface())
			}
		}
		r.path.Pop()
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeAny resolves the cursor into an empty interface: a scalar becomes
// its native Go value, an inner node becomes map[string]any or []any.
func (r *resolution) decodeAny(rv reflect.Value, def *string) error {
	k := r.path.String()
	v, ok, err := r.value(def)
	if err != nil {
		return err
	}
	if ok {
		// Random markers never reach here: value() already normalized
		// them to concrete scalars.
		var out any
		switch v.Kind() {
		case store.KindString:
			out, err = toString(k, v)
		case store.KindInt:
			out = v.IntVal()
		case store.KindFloat:
			out = v.FloatVal()
		case store.KindBool:
			out = v.BoolVal()
		}
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(out))
		return nil
	}

	names, bound := r.snap.Children(k)
	switch {
	case bound > 0:
		var s []any
		if err := r.decodeSlice(reflect.ValueOf(&s).Elem()); err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(s))
	case len(names) > 0:
		m := map[string]any{}
		if err := r.decodeMap(reflect.ValueOf(&m).Elem()); err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(m))
	default:
		return notFoundErr(k)
	}
	return nil
}
