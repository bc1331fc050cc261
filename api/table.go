package api

// Table is a named array of samples owned by the host.
type Table interface {
	Name() string
	// Floats returns the table storage. Writes through the slice are visible
	// to the host.
	Floats() []float32
	// Redraw tells the host the table content changed.
	Redraw()
}

// TableResolver looks tables up by name.
type TableResolver interface {
	// Lookup returns the named table, or an error describing why it cannot be
	// used (missing, wrong element type, ...).
	Lookup(name string) (Table, error)
}
