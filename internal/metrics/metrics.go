// Package metrics records the outcome of a renewal run as Prometheus metrics.
//
// sgrenew is a short-lived process started by cron or a systemd timer, so it
// does not serve /metrics. Instead the run writes its registry to a file in
// the node_exporter textfile collector directory:
//
//	sgrenew_certificate_expiry_timestamp_seconds{domain="example.com"} 1.79e+09
//	sgrenew_renewal_attempts_total{domain="example.com",result="success"} 1
//	sgrenew_ingress_rule_operations_total{operation="add",result="success"} 1
//	sgrenew_last_run_timestamp_seconds 1.79e+09
//
// All Recorder methods are safe to call on a nil *Recorder, which records
// nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Operation label values.
const (
	OperationAdd    = "add"
	OperationRemove = "remove"
)

// Recorder owns a private registry with the run's collectors.
type Recorder struct {
	registry *prometheus.Registry

	// CertificateExpiry is the NotAfter of each checked certificate.
	// Labels: domain
	CertificateExpiry *prometheus.GaugeVec

	// RenewalAttempts counts certbot invocations by outcome.
	// Labels: domain, result (success, error, skipped)
	RenewalAttempts *prometheus.CounterVec

	// RuleOperations counts security group requests.
	// Labels: operation (add, remove), result (success, error)
	RuleOperations *prometheus.CounterVec

	// DomainFailures counts domains whose workflow failed, by error code.
	// Labels: domain, code
	DomainFailures *prometheus.CounterVec

	// LastRun is the Unix time the run finished.
	LastRun prometheus.Gauge
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		CertificateExpiry: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sgrenew_certificate_expiry_timestamp_seconds",
				Help: "Unix timestamp of the certificate NotAfter",
			},
			[]string{"domain"},
		),
		RenewalAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sgrenew_renewal_attempts_total",
				Help: "Certbot renewal attempts by domain and result",
			},
			[]string{"domain", "result"},
		),
		RuleOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sgrenew_ingress_rule_operations_total",
				Help: "Security group ingress requests by operation and result",
			},
			[]string{"operation", "result"},
		),
		DomainFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sgrenew_domain_failures_total",
				Help: "Domains whose renewal workflow failed, by error code",
			},
			[]string{"domain", "code"},
		),
		LastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sgrenew_last_run_timestamp_seconds",
				Help: "Unix timestamp of the last completed run",
			},
		),
	}

	r.registry.MustRegister(
		r.CertificateExpiry,
		r.RenewalAttempts,
		r.RuleOperations,
		r.DomainFailures,
		r.LastRun,
	)
	return r
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveExpiry records the NotAfter of domain's certificate.
func (r *Recorder) ObserveExpiry(domain string, notAfter time.Time) {
	if r == nil {
		return
	}
	r.CertificateExpiry.WithLabelValues(domain).Set(float64(notAfter.Unix()))
}

// RenewalAttempt counts one renewal outcome for domain.
func (r *Recorder) RenewalAttempt(domain, result string) {
	if r == nil {
		return
	}
	r.RenewalAttempts.WithLabelValues(domain, result).Inc()
}

// RuleOperation counts one security group request.
func (r *Recorder) RuleOperation(operation string, err error) {
	if r == nil {
		return
	}
	r.RuleOperations.WithLabelValues(operation, resultOf(err)).Inc()
}

// DomainFailed counts a failed domain workflow.
func (r *Recorder) DomainFailed(domain, code string) {
	if r == nil {
		return
	}
	r.DomainFailures.WithLabelValues(domain, code).Inc()
}

// RunCompleted stamps the end of the run.
func (r *Recorder) RunCompleted(at time.Time) {
	if r == nil {
		return
	}
	r.LastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry to path in the text exposition format.
// The file is written to a temporary name and renamed, so the collector
// never reads a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
