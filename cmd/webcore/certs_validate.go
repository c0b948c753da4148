package main

import (
	"fmt"

	"github.com/spf13/cobra"

	tlsx "surevoucher/webcore/pkg/security/tls"
)

var certsValidateFlags struct {
	certFile string
	keyFile  string
}

var certsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate certificate and key",
	Long: `Validate a TLS certificate and private key the way the server loads them.

This command checks that:
  - the certificate file holds at least one CERTIFICATE block
  - the key file holds a PKCS#8 PRIVATE KEY block (the last one is used)
  - the key matches the certificate
  - the certificate is currently valid, warning when it expires within 30 days

Examples:
  webcore certs validate --cert certs/cert.pem --key certs/key.pem`,
	RunE: validateCertificate,
}

func init() {
	certsCmd.AddCommand(certsValidateCmd)

	certsValidateCmd.Flags().StringVar(&certsValidateFlags.certFile, "cert", "", "certificate file (required)")
	certsValidateCmd.Flags().StringVar(&certsValidateFlags.keyFile, "key", "", "private key file (required)")

	_ = certsValidateCmd.MarkFlagRequired("cert")
	_ = certsValidateCmd.MarkFlagRequired("key")
}

func validateCertificate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cert, err := tlsx.LoadKeyPair(certsValidateFlags.certFile, certsValidateFlags.keyFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Certificate and key match")

	if err := tlsx.ValidateCertificate(&cert); err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Certificate is within its validity period")

	if cert.Leaf != nil {
		if days, warning := tlsx.CheckCertificateExpiration(cert.Leaf); warning != "" {
			fmt.Fprintf(out, "⚠️  %s\n", warning)
		} else {
			fmt.Fprintf(out, "✓ Certificate expires in %d days\n", days)
		}
	}
	return nil
}
