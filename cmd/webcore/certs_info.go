package main

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"surevoucher/webcore/pkg/cli"
	tlsx "surevoucher/webcore/pkg/security/tls"
)

var infoFlags struct {
	output string
}

var certsInfoCmd = &cobra.Command{
	Use:   "info [cert-file]",
	Short: "Display certificate details",
	Long: `Display the subject, issuer, validity period, subject alternative names and
algorithms of the first certificate in a PEM file.

Examples:
  webcore certs info certs/cert.pem
  webcore certs info --output json certs/cert.pem`,
	Args: cobra.ExactArgs(1),
	RunE: displayCertInfo,
}

func init() {
	certsCmd.AddCommand(certsInfoCmd)

	certsInfoCmd.Flags().StringVarP(&infoFlags.output, "output", "o", "text", "output format: text, json, yaml")
}

func displayCertInfo(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(infoFlags.output)
	if err != nil {
		return err
	}

	cert, err := readCertificate(args[0])
	if err != nil {
		return err
	}
	info := tlsx.ExtractCertificateInfo(cert)

	if format != cli.FormatText {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), info)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subject:      %s\n", info.Subject)
	fmt.Fprintf(out, "Issuer:       %s\n", info.Issuer)
	fmt.Fprintf(out, "Serial:       %s\n", info.SerialNumber)
	fmt.Fprintf(out, "Not Before:   %s\n", info.NotBefore.Format(time.RFC3339))
	fmt.Fprintf(out, "Not After:    %s\n", info.NotAfter.Format(time.RFC3339))
	if len(info.DNSNames) > 0 {
		fmt.Fprintf(out, "DNS Names:    %s\n", strings.Join(info.DNSNames, ", "))
	}
	if len(info.IPAddresses) > 0 {
		fmt.Fprintf(out, "IP Addresses: %s\n", strings.Join(info.IPAddresses, ", "))
	}
	fmt.Fprintf(out, "Signature:    %s\n", info.SignatureAlgorithm)
	fmt.Fprintf(out, "Public Key:   %s\n", info.PublicKeyAlgorithm)

	if _, warning := tlsx.CheckCertificateExpiration(cert); warning != "" {
		fmt.Fprintf(out, "\n⚠️  %s\n", warning)
	}
	return nil
}

func readCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &tlsx.CertLoadError{Path: path, Err: err}
	}
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, &tlsx.CertLoadError{Path: path, Err: tlsx.ErrNoCertificates}
		}
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, &tlsx.CertLoadError{Path: path, Err: err}
			}
			return cert, nil
		}
	}
}
