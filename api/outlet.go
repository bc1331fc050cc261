package api

// Outlet receives the values an object emits.
type Outlet interface {
	Float(v float32)
}

// OutletFunc adapts a function to Outlet.
type OutletFunc func(v float32)

// Float implements Outlet.
func (f OutletFunc) Float(v float32) { f(v) }

// Discard drops every value.
var Discard Outlet = OutletFunc(func(float32) {})
