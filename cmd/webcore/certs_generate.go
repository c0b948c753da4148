package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	tlsx "surevoucher/webcore/pkg/security/tls"
)

var generateFlags struct {
	hosts    string
	org      string
	validity int
	keySize  int
	output   string
}

var certsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate self-signed certificate",
	Long: `Generate a self-signed TLS certificate and PKCS#8 private key for
development and testing. Do not use the result in production.

The certificate is written to cert.pem (0644) and the key to key.pem (0600)
in the output directory.

Examples:
  # Generate certificate for localhost
  webcore certs generate --host localhost

  # Generate with multiple hosts and a short validity
  webcore certs generate --host "localhost,127.0.0.1" --validity 30 --output certs/`,
	RunE: generateCertificate,
}

func init() {
	certsCmd.AddCommand(certsGenerateCmd)

	certsGenerateCmd.Flags().StringVar(&generateFlags.hosts, "host", "localhost,127.0.0.1", "comma-separated hostnames and IPs")
	certsGenerateCmd.Flags().StringVar(&generateFlags.org, "org", "SureVoucher", "organization name")
	certsGenerateCmd.Flags().IntVar(&generateFlags.validity, "validity", 365, "validity in days")
	certsGenerateCmd.Flags().IntVar(&generateFlags.keySize, "key-size", 2048, "RSA key size (2048, 3072, 4096)")
	certsGenerateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "certs", "output directory")
}

func generateCertificate(cmd *cobra.Command, args []string) error {
	if generateFlags.validity <= 0 {
		return fmt.Errorf("invalid validity: %d days", generateFlags.validity)
	}

	certPEM, keyPEM, err := tlsx.GenerateSelfSigned(tlsx.SelfSignedOptions{
		Hosts:        strings.Split(generateFlags.hosts, ","),
		Organization: generateFlags.org,
		Validity:     time.Duration(generateFlags.validity) * 24 * time.Hour,
		KeySize:      generateFlags.keySize,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(generateFlags.output, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	certPath := filepath.Join(generateFlags.output, "cert.pem")
	keyPath := filepath.Join(generateFlags.output, "key.pem")
	// #nosec G306 - certificates are public
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Certificate generated: %s\n", certPath)
	fmt.Fprintf(out, "✓ Private key generated: %s\n", keyPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "⚠️  Self-signed certificates are for TESTING ONLY")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To serve over TLS, add to your surevoucher.yaml:")
	fmt.Fprintln(out, "---")
	fmt.Fprintln(out, "tls:")
	fmt.Fprintf(out, "  cert_path: %q\n", certPath)
	fmt.Fprintf(out, "  key_path: %q\n", keyPath)
	fmt.Fprintln(out, "or set SUREVOUCHER__TLS__CERT_PATH and SUREVOUCHER__TLS__KEY_PATH.")
	return nil
}
