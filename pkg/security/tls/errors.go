package tls

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNoCertificates is returned when a certificate file holds no
	// CERTIFICATE PEM blocks.
	ErrNoCertificates = errors.New("no CERTIFICATE blocks found")

	// ErrNoPrivateKey is returned when a key file holds no PKCS#8
	// PRIVATE KEY PEM blocks.
	ErrNoPrivateKey = errors.New("no PKCS#8 PRIVATE KEY blocks found")
)

// CertLoadError reports an unreadable or unusable certificate chain,
// including a chain that does not match the private key.
type CertLoadError struct {
	Path string
	Err  error
}

func (e *CertLoadError) Error() string {
	return fmt.Sprintf("load certificate %q: %v", e.Path, e.Err)
}

func (e *CertLoadError) Unwrap() error { return e.Err }

// KeyLoadError reports an unreadable, missing or unparsable private key.
type KeyLoadError struct {
	Path string
	Err  error
}

func (e *KeyLoadError) Error() string {
	return fmt.Sprintf("load private key %q: %v", e.Path, e.Err)
}

func (e *KeyLoadError) Unwrap() error { return e.Err }

// HandshakeError describes a failed TLS handshake on one connection. It is
// reported to the listener's handshake hook and logged, never returned from
// Accept.
type HandshakeError struct {
	RemoteAddr net.Addr
	Err        error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("tls handshake with %s: %v", addrString(e.RemoteAddr), e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// AcceptError is the terminal error of a Listener whose underlying listener
// failed to accept. It deliberately does not implement net.Error, so
// http.Server.Serve returns it instead of retrying.
type AcceptError struct {
	Err error
}

func (e *AcceptError) Error() string {
	return fmt.Sprintf("tls listener accept: %v", e.Err)
}

func (e *AcceptError) Unwrap() error { return e.Err }

func addrString(a net.Addr) string {
	if a == nil {
		return "<unknown>"
	}
	return a.String()
}
