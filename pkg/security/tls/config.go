package tls

import (
	"crypto/tls"
	"fmt"
)

// ALPN protocols offered by the server, in preference order.
var nextProtos = []string{"h2", "http/1.1"}

// ServerConfig builds the server-side TLS configuration for cert. Client
// certificates are neither requested nor verified.
func ServerConfig(cert tls.Certificate, minVersion string) (*tls.Config, error) {
	version, err := ParseVersion(minVersion)
	if err != nil {
		return nil, err
	}

	// #nosec G402 - MinVersion is validated (TLS 1.0/1.1 rejected)
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   version,
		NextProtos:   append([]string(nil), nextProtos...),
		ClientAuth:   tls.NoClientCert,
	}, nil
}

// ParseVersion converts "1.2" or "1.3" to a tls.Version constant. An empty
// string means TLS 1.2. TLS 1.0 and 1.1 are not supported.
func ParseVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q (must be 1.2 or 1.3)", v)
	}
}
