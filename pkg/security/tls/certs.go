package tls

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"time"
)

const (
	pemTypeCertificate = "CERTIFICATE"
	pemTypePrivateKey  = "PRIVATE KEY"

	// expiryWarningDays is how close to expiry a certificate gets logged.
	expiryWarningDays = 30
)

// LoadKeyPair reads a PEM certificate chain and a PKCS#8 private key.
//
// Every CERTIFICATE block of certPath is used, in order. Of the PRIVATE KEY
// blocks in keyPath, the last one is used. Blocks of other types are
// ignored. A chain that does not match the key is a *CertLoadError.
func LoadKeyPair(certPath, keyPath string) (tls.Certificate, error) {
	certData, err := os.ReadFile(certPath)
	if err != nil {
		return tls.Certificate{}, &CertLoadError{Path: certPath, Err: err}
	}
	certPEM := filterBlocks(certData, pemTypeCertificate, false)
	if len(certPEM) == 0 {
		return tls.Certificate{}, &CertLoadError{Path: certPath, Err: ErrNoCertificates}
	}

	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return tls.Certificate{}, &KeyLoadError{Path: keyPath, Err: err}
	}
	keyPEM := filterBlocks(keyData, pemTypePrivateKey, true)
	if len(keyPEM) == 0 {
		return tls.Certificate{}, &KeyLoadError{Path: keyPath, Err: ErrNoPrivateKey}
	}
	block, _ := pem.Decode(keyPEM)
	if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err != nil {
		return tls.Certificate{}, &KeyLoadError{Path: keyPath, Err: err}
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, &CertLoadError{Path: certPath, Err: err}
	}
	return cert, nil
}

// filterBlocks re-encodes the PEM blocks of type typ found in data. With
// lastOnly set, only the final matching block is kept.
func filterBlocks(data []byte, typ string, lastOnly bool) []byte {
	var out bytes.Buffer
	var last *pem.Block
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != typ {
			continue
		}
		if lastOnly {
			last = block
			continue
		}
		_ = pem.Encode(&out, block)
	}
	if last != nil {
		_ = pem.Encode(&out, last)
	}
	return out.Bytes()
}

// ValidateCertificate checks if a certificate is valid and not expired.
func ValidateCertificate(cert *tls.Certificate) error {
	if cert == nil {
		return fmt.Errorf("certificate is nil")
	}

	x509Cert, err := leaf(cert)
	if err != nil {
		return err
	}

	return ValidateX509Certificate(x509Cert)
}

// ValidateX509Certificate validates an x509 certificate for expiration.
func ValidateX509Certificate(cert *x509.Certificate) error {
	now := time.Now()

	if now.Before(cert.NotBefore) {
		return fmt.Errorf("certificate is not yet valid (valid from %s)", cert.NotBefore.Format(time.RFC3339))
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("certificate expired on %s", cert.NotAfter.Format(time.RFC3339))
	}

	return nil
}

// CheckCertificateExpiration checks if a certificate is expiring soon.
// Returns the number of days until expiration and a warning if < 30 days.
func CheckCertificateExpiration(cert *x509.Certificate) (daysUntilExpiry int, warning string) {
	duration := time.Until(cert.NotAfter)
	daysUntilExpiry = int(duration.Hours() / 24)

	if daysUntilExpiry < expiryWarningDays {
		warning = fmt.Sprintf("certificate expires in %d days (on %s)",
			daysUntilExpiry, cert.NotAfter.Format("2006-01-02"))
	}

	return daysUntilExpiry, warning
}

// LogCertificate logs the leaf certificate of cert and warns when it is
// outside its validity window or close to expiry. Nothing here is fatal;
// clients decide whether to trust the certificate.
func LogCertificate(logger *slog.Logger, cert *tls.Certificate) {
	x509Cert, err := leaf(cert)
	if err != nil {
		logger.Warn("cannot inspect tls certificate", "error", err)
		return
	}

	info := ExtractCertificateInfo(x509Cert)
	logger.Info("tls certificate loaded",
		"subject", info.Subject,
		"issuer", info.Issuer,
		"not_after", info.NotAfter.Format(time.RFC3339),
		"dns_names", info.DNSNames,
		"ip_addresses", info.IPAddresses,
	)

	if err := ValidateX509Certificate(x509Cert); err != nil {
		logger.Warn("tls certificate is not currently valid", "error", err)
		return
	}
	if days, warning := CheckCertificateExpiration(x509Cert); warning != "" {
		logger.Warn(warning, "days_until_expiry", days)
	}
}

// CertificateInfo holds human-readable information from a certificate.
type CertificateInfo struct {
	Subject            string    `json:"subject" yaml:"subject"`
	Issuer             string    `json:"issuer" yaml:"issuer"`
	SerialNumber       string    `json:"serial_number" yaml:"serial_number"`
	NotBefore          time.Time `json:"not_before" yaml:"not_before"`
	NotAfter           time.Time `json:"not_after" yaml:"not_after"`
	DNSNames           []string  `json:"dns_names,omitempty" yaml:"dns_names,omitempty"`
	IPAddresses        []string  `json:"ip_addresses,omitempty" yaml:"ip_addresses,omitempty"`
	SignatureAlgorithm string    `json:"signature_algorithm" yaml:"signature_algorithm"`
	PublicKeyAlgorithm string    `json:"public_key_algorithm" yaml:"public_key_algorithm"`
}

// ExtractCertificateInfo extracts information from an x509 certificate.
func ExtractCertificateInfo(cert *x509.Certificate) *CertificateInfo {
	info := &CertificateInfo{
		Subject:            cert.Subject.String(),
		Issuer:             cert.Issuer.String(),
		SerialNumber:       fmt.Sprintf("%x", cert.SerialNumber),
		NotBefore:          cert.NotBefore,
		NotAfter:           cert.NotAfter,
		DNSNames:           cert.DNSNames,
		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
		PublicKeyAlgorithm: cert.PublicKeyAlgorithm.String(),
	}

	for _, ip := range cert.IPAddresses {
		info.IPAddresses = append(info.IPAddresses, ip.String())
	}

	return info
}

func leaf(cert *tls.Certificate) (*x509.Certificate, error) {
	if cert.Leaf != nil {
		return cert.Leaf, nil
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("certificate chain is empty")
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	return x509Cert, nil
}
