package main

import (
	"github.com/spf13/cobra"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Manage TLS certificates",
	Long: `Manage TLS certificates for the main listener.

Subcommands:
  generate - Generate a self-signed certificate for development
  validate - Check that a certificate and key load and are in date
  info     - Display certificate details

Examples:
  # Generate a development certificate
  webcore certs generate --host localhost,127.0.0.1

  # Validate the configured pair
  webcore certs validate --cert certs/cert.pem --key certs/key.pem`,
}

func init() {
	rootCmd.AddCommand(certsCmd)
}
