// Package stdx holds small helpers the standard library lacks.
package stdx

// Must0 panics if err is not nil.
func Must0(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 returns v, or panics when err is not nil. It is meant for values that
// can only be wrong when the program itself is, like embedded data.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
