// Package cert decides whether a certificate on disk is due for renewal.
package cert

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
	"github.com/ksyq12/sgrenew/internal/logger"
)

// Status is the outcome of an expiry check.
type Status struct {
	Path     string    `json:"path"`
	NotAfter time.Time `json:"not_after"`
	Due      bool      `json:"due"`
}

// Remaining returns the time left until expiry as seen from now.
func (s Status) Remaining(now time.Time) time.Duration {
	return s.NotAfter.Sub(now)
}

// Checker reads certificates and compares their expiry against a margin.
type Checker interface {
	ReadyForRenewal(path string, now time.Time, margin time.Duration) (Status, error)
}

// FileChecker implements Checker for PEM files on the local filesystem.
type FileChecker struct{}

// NewFileChecker creates a FileChecker.
func NewFileChecker() *FileChecker {
	return &FileChecker{}
}

// ReadyForRenewal reports whether the certificate at path expires before
// now+margin. An expiry exactly at now+margin is not due. Only a Debug line
// is logged, so read-only callers can print their own report.
func (c *FileChecker) ReadyForRenewal(path string, now time.Time, margin time.Duration) (Status, error) {
	notAfter, err := ReadExpiry(path)
	if err != nil {
		return Status{Path: path}, err
	}

	status := Status{
		Path:     path,
		NotAfter: notAfter,
		Due:      IsDue(notAfter, now, margin),
	}

	logger.DebugFields("Read certificate", map[string]interface{}{
		"path":      path,
		"not_after": notAfter.UTC().Format(time.RFC3339),
		"due":       status.Due,
	})

	return status, nil
}

// IsDue is the renewal decision: notAfter < now + margin.
func IsDue(notAfter, now time.Time, margin time.Duration) bool {
	return notAfter.Before(now.Add(margin))
}

// ReadExpiry returns the NotAfter of the first certificate in the PEM file at path.
func ReadExpiry(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.ErrCodeCert, "failed to read certificate", err)
	}

	cert, err := ParsePEM(data)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.ErrCodeCert, fmt.Sprintf("failed to parse %s", path), err)
	}
	return cert.NotAfter, nil
}

// ParsePEM decodes the first CERTIFICATE block in data. Leading blocks of
// other types (a private key in a combined file) are skipped.
func ParsePEM(data []byte) (*x509.Certificate, error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, fmt.Errorf("no PEM certificate found")
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		return x509.ParseCertificate(block.Bytes)
	}
}
