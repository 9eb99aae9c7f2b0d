// Package errors provides standardized error types for the sgrenew CLI tool.
//
// The errors package defines domain-specific error types that enable
// structured error handling and consistent error messages throughout
// the application.
//
// # Error Types
//
// RenewError is the primary error type, containing:
//   - Code: Categorizes the error (CONFIG, CERT, FIREWALL, etc.)
//   - Message: Human-readable error description
//   - Domain: The domain being processed (if applicable)
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Every error code has a sentinel that matches any error of that code:
//
//	errors.ErrConfigInvalid // configuration file is unusable
//	errors.ErrCertInvalid   // certificate missing or unparsable
//	errors.ErrFirewall      // security group call rejected
//	errors.ErrRenewal       // certbot failed
//	errors.ErrLocked        // another run holds the lock
//
// # Usage
//
//	// Wrapping an underlying error for a domain
//	return errors.WrapDomain(errors.ErrCodeCert, "example.com", "failed to read certificate", err)
//
//	// Checking the category
//	if errors.Is(err, errors.ErrFirewall) {
//	    // the security group may still be open
//	}
//
// Use errors.As for type assertion:
//
//	var renewErr *errors.RenewError
//	if errors.As(err, &renewErr) {
//	    fmt.Printf("Error code: %s, Domain: %s\n", renewErr.Code, renewErr.Domain)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeConfig   ErrorCode = "CONFIG"   // Configuration error
	ErrCodeCert     ErrorCode = "CERT"     // Certificate read/parse error
	ErrCodeFirewall ErrorCode = "FIREWALL" // Security group control-plane error
	ErrCodeRenewal  ErrorCode = "RENEWAL"  // Renewal tool error
	ErrCodeLock     ErrorCode = "LOCK"     // Run lock error
	ErrCodeInternal ErrorCode = "INTERNAL" // Internal/unexpected error
)

// RenewError represents a structured error with context about the operation.
type RenewError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Domain  string    // Domain name (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *RenewError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Domain != "" && e.Err != nil {
		return fmt.Sprintf("domain %s: %s: %v", e.Domain, msg, e.Err)
	}
	if e.Domain != "" {
		return fmt.Sprintf("domain %s: %s", e.Domain, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *RenewError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *RenewError) Is(target error) bool {
	t, ok := target.(*RenewError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrConfigInvalid indicates the configuration is missing or invalid.
	ErrConfigInvalid = &RenewError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrCertInvalid indicates the certificate could not be read or parsed.
	ErrCertInvalid = &RenewError{Code: ErrCodeCert, Message: "invalid certificate"}

	// ErrFirewall indicates the security group request was rejected.
	ErrFirewall = &RenewError{Code: ErrCodeFirewall, Message: "security group request failed"}

	// ErrRenewal indicates the renewal tool failed or is missing.
	ErrRenewal = &RenewError{Code: ErrCodeRenewal, Message: "renewal failed"}

	// ErrLocked indicates another run currently holds the lock.
	ErrLocked = &RenewError{Code: ErrCodeLock, Message: "another run is in progress"}
)

// Config creates a configuration error with a custom message.
func Config(msg string) error {
	return &RenewError{
		Code:    ErrCodeConfig,
		Message: msg,
	}
}

// Configf creates a configuration error with a formatted message.
func Configf(format string, args ...interface{}) error {
	return Config(fmt.Sprintf(format, args...))
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &RenewError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapDomain creates an error with domain context and underlying error.
func WrapDomain(code ErrorCode, domain, msg string, err error) error {
	return &RenewError{
		Code:    code,
		Message: msg,
		Domain:  domain,
		Err:     err,
	}
}

// CodeOf returns the code of the first RenewError in err's chain,
// or ErrCodeInternal if there is none.
func CodeOf(err error) ErrorCode {
	var renewErr *RenewError
	if errors.As(err, &renewErr) {
		return renewErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
