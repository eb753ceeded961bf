package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/twmb/franz-go/pkg/kerr"
)

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a network connectivity error (e.g., refused, unreachable).
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
	// ConnectionErrorAuth indicates SASL authentication was rejected.
	ConnectionErrorAuth
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	case ConnectionErrorAuth:
		return "Authentication error"
	default:
		return "Connection error"
	}
}

// ConnectionError indicates the cluster could not be reached. It wraps the
// underlying error and categorizes it for user feedback.
type ConnectionError struct {
	// Cluster names the cluster entry that could not be reached.
	Cluster string
	// Type categorizes the connection error.
	Type ConnectionErrorType
	// Reason is the underlying error.
	Reason error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s talking to cluster %s: %v", e.Type, e.Cluster, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// ClassifyConnectionError analyzes an error and returns a ConnectionError with
// the appropriate type. Returns nil for nil errors and for errors that are not
// connectivity failures.
func ClassifyConnectionError(err error, cluster string) *ConnectionError {
	if err == nil {
		return nil
	}

	var t ConnectionErrorType
	var dnsErr *net.DNSError
	switch {
	case isAuthError(err):
		t = ConnectionErrorAuth
	case isTLSError(err):
		t = ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		t = ConnectionErrorDNS
	case isTimeoutError(err):
		t = ConnectionErrorTimeout
	case isNetworkError(err.Error()):
		t = ConnectionErrorNetwork
	default:
		return nil
	}
	return &ConnectionError{Cluster: cluster, Type: t, Reason: err}
}

func isAuthError(err error) bool {
	return errors.Is(err, kerr.SaslAuthenticationFailed) ||
		errors.Is(err, kerr.IllegalSaslState) ||
		errors.Is(err, kerr.UnsupportedSaslMechanism)
}

// isTLSError checks if the error is related to TLS/certificate issues.
func isTLSError(err error) bool {
	var certErr *x509.CertificateInvalidError
	var hostErr *x509.HostnameError
	var unknownAuthErr *x509.UnknownAuthorityError
	var systemRootsErr *x509.SystemRootsError

	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &systemRootsErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{"x509:", "certificate", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// isTimeoutError checks if the error is a timeout.
func isTimeoutError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "i/o timeout") || strings.Contains(errStr, "deadline exceeded")
}

// isNetworkError checks if the error string indicates a network connectivity issue.
func isNetworkError(errStr string) bool {
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"unable to dial",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// ChangesFailedError reports that a change command finished with a non-empty
// error list. The results themselves have already been printed.
type ChangesFailedError struct {
	Failed int
	Total  int
}

func (e *ChangesFailedError) Error() string {
	return fmt.Sprintf("%d of %d config changes failed", e.Failed, e.Total)
}

// UnhealthyError reports a cluster that did not pass its health check.
type UnhealthyError struct {
	Reasons []string
}

func (e *UnhealthyError) Error() string {
	return "cluster is not healthy: " + strings.Join(e.Reasons, " ")
}
