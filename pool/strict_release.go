//go:build !pooldebug

package pool

// violation reports a broken borrow/return contract as an error.
func violation(err error) error {
	return err
}
