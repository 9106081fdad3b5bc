//go:build !cgo

package codecheck

// Checker is inert without cgo.
type Checker struct {
	lang Language
}

// New always fails without cgo.
func New(lang string) (*Checker, error) {
	return nil, ErrUnavailable
}

// Language returns the checker's language.
func (c *Checker) Language() Language { return c.lang }

// Check always fails without cgo.
func (c *Checker) Check(src string) ([]Issue, error) {
	return nil, ErrUnavailable
}

// Available reports false without cgo.
func Available() bool { return false }
