/*
Package tls loads server TLS material and wraps listeners in TLS.

# Loading Certificates

LoadKeyPair reads a PEM certificate chain and a PKCS#8 private key:

	cert, err := tls.LoadKeyPair("/etc/surevoucher/server.crt", "/etc/surevoucher/server.key")
	if err != nil {
		return err // *CertLoadError or *KeyLoadError
	}

	tlsConfig, err := tls.ServerConfig(cert, "1.2")

The server config requests no client certificates and offers ALPN h2 and
http/1.1.

# TLS Listener

NewListener turns a raw TCP listener into a listener of established TLS
connections. Each handshake runs in its own goroutine bounded by a timeout;
failed handshakes are logged and never surface from Accept:

	raw, _ := net.Listen("tcp", "127.0.0.1:8443")
	ln := tls.NewListener(raw, tlsConfig, tls.ListenerOptions{
		HandshakeTimeout: 10 * time.Second,
		OnHandshake: func(r tls.HandshakeResult) {
			collector.RecordHandshake(r.Outcome.String())
		},
	})
	err := httpServer.Serve(ln)

An error from the raw listener is terminal and returned by Accept as an
*AcceptError, which http.Server.Serve does not retry.

# Development Certificates

GenerateSelfSigned creates a self-signed certificate and key suitable for
local testing only.
*/
package tls
