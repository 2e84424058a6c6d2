// Package option wraps a possibly-absent value so lookups can be chained
// without a nil check at every step.
//
// Presence is explicit: zero values such as 0, "" and false are present.
// Only nil pointers, interfaces, maps, slices, funcs and chans count as absent
// when passed through Of.
package option

import "reflect"

// Option holds a value or nothing.
type Option[T any] struct {
	value T
	ok    bool
}

// Of wraps v. Nil-able kinds holding nil become absent; everything else is present.
func Of[T any](v T) Option[T] {
	if isNil(v) {
		return Option[T]{}
	}
	return Option[T]{value: v, ok: true}
}

// Some wraps v as present, even if v is nil.
func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }

// None returns an absent Option.
func None[T any]() Option[T] { return Option[T]{} }

// FromPair adapts the (value, ok) idiom.
func FromPair[T any](v T, ok bool) Option[T] {
	if !ok {
		return Option[T]{}
	}
	return Of(v)
}

// Bind applies fn to a present value and rewraps the result with Of.
// An absent Option short-circuits.
func Bind[T, U any](o Option[T], fn func(T) U) Option[U] {
	if !o.ok {
		return Option[U]{}
	}
	return Of(fn(o.value))
}

// Then is Bind for functions that already return an Option.
func Then[T, U any](o Option[T], fn func(T) Option[U]) Option[U] {
	if !o.ok {
		return Option[U]{}
	}
	return fn(o.value)
}

// Do runs fn for its side effect when the value is present and returns o unchanged.
func (o Option[T]) Do(fn func(T)) Option[T] {
	if o.ok {
		fn(o.value)
	}
	return o
}

// Catch replaces an absent Option with Of(fn()). Present values pass through.
func (o Option[T]) Catch(fn func() T) Option[T] {
	if o.ok {
		return o
	}
	return Of(fn())
}

// Get unwraps the value. ok is false when absent.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// OrElse returns the value or def when absent.
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// Present reports whether a value is held.
func (o Option[T]) Present() bool { return o.ok }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
