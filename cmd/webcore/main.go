// Webcore runs the SureVoucher web server bootstrap: the application router
// on the main listener, optionally behind TLS, next to a health server that
// serves /healthz, /ready and /metrics.
//
// Usage:
//
//	# Start with configuration from the default locations and environment
//	webcore run
//
//	# Start with an explicit configuration file
//	webcore run --config /etc/surevoucher/config.yaml
//
//	# Print the effective configuration
//	webcore config show
//
//	# Generate a development certificate
//	webcore certs generate --host localhost,127.0.0.1
//
// Every configuration key can be set through the environment with the
// SUREVOUCHER__ prefix, for example SUREVOUCHER__TLS__CERT_PATH.
package main

func main() {
	Execute()
}
