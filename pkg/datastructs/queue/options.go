package queue

import "reflect"

// Option configures a Blocking queue.
type Option func(*options)

type options struct {
	rejectNil bool
}

// WithRejectNil makes inserts of nil pointers, interfaces, maps, slices,
// channels and funcs fail with ErrNilItem.
func WithRejectNil() Option {
	return func(o *options) {
		o.rejectNil = true
	}
}

// isNil reports whether v is nil or a nil value of a nillable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
