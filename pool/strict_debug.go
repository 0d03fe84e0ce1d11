//go:build pooldebug

package pool

// violation panics so contract breaks surface at the offending call site.
func violation(err error) error {
	panic(err)
}
