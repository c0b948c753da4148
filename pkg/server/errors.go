package server

import (
	"errors"
	"fmt"
)

// Listener roles reported in AddressParseError and BindError.
const (
	RoleMain   = "main"
	RoleHealth = "health"
)

// ErrAlreadyStarted is returned by Run on any call after the first.
var ErrAlreadyStarted = errors.New("server already started")

// AddressParseError reports a bind address that is not a valid IP:port.
// It is returned before anything is bound.
type AddressParseError struct {
	Role string
	Addr string
	Err  error
}

func (e *AddressParseError) Error() string {
	return fmt.Sprintf("invalid %s address %q: %v", e.Role, e.Addr, e.Err)
}

func (e *AddressParseError) Unwrap() error {
	return e.Err
}

// BindError reports a listener that could not be opened. It is fatal for
// RoleMain; for RoleHealth it is logged and the server runs without probes.
type BindError struct {
	Role string
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s listener %s: %v", e.Role, e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
