package uptime

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"syscall"
	"time"
)

const (
	// DefaultTimeoutReportingDelay is how long a timeout must persist before it is reported.
	DefaultTimeoutReportingDelay = time.Second
	// DefaultContentPattern accepts any body with at least one non-space character.
	DefaultContentPattern = `\S`

	maxBodyBytes = 1 << 20
)

// DefaultGraceDelays returns the grace table used when none is configured.
func DefaultGraceDelays() GraceDelays {
	return GraceDelays{KindTimeout: DefaultTimeoutReportingDelay}
}

// Prober runs one check against an endpoint and classifies the result.
// Probe never returns an error: every failure becomes an Outcome kind.
type Prober struct {
	client  *http.Client
	pattern *regexp.Regexp
	delays  GraceDelays
	clock   Clock
}

// NewProber builds a Prober. A nil pattern falls back to DefaultContentPattern.
func NewProber(client *http.Client, pattern *regexp.Regexp, delays GraceDelays, clock Clock) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if pattern == nil {
		pattern = regexp.MustCompile(DefaultContentPattern)
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Prober{client: client, pattern: pattern, delays: delays, clock: clock}
}

func (p *Prober) Probe(ctx context.Context, ep Endpoint) Outcome {
	start := time.Now()
	checkedAt := p.clock.Now()

	finish := func(o Outcome) Outcome {
		o.GraceDelay = p.delays.For(o.Kind)
		o.Latency = time.Since(start)
		o.CheckedAt = checkedAt
		return o
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, ep.URL, nil)
	if err != nil {
		return finish(unknownOutcome(ep, "request", fmt.Sprintf("Error creating request: %v", err)))
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return finish(classifyError(ep, err))
	}
	defer resp.Body.Close()

	expected := ep.ExpectedStatus
	if expected == 0 {
		expected = http.StatusOK
	}
	if resp.StatusCode != expected {
		return finish(httpErrorOutcome(ep, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return finish(classifyError(ep, err))
	}
	if !p.pattern.Match(body) {
		o := Outcome{
			Kind:       EmptyResponse(),
			Title:      fmt.Sprintf("%s returned unexpected content", ep.Name),
			Message:    fmt.Sprintf("Error: response body does not match %q", p.pattern.String()),
			StatusCode: resp.StatusCode,
		}
		return finish(o)
	}
	return finish(Outcome{
		Kind:       Healthy(),
		Title:      fmt.Sprintf("%s is back up", ep.Name),
		Message:    fmt.Sprintf("Responded with %d", resp.StatusCode),
		StatusCode: resp.StatusCode,
	})
}

func classifyError(ep Endpoint, err error) Outcome {
	if isTimeout(err) {
		return Outcome{
			Kind:    Timeout(),
			Detail:  err.Error(),
			Title:   fmt.Sprintf("%s does not respond", ep.Name),
			Message: "Error: Timeout",
		}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Outcome{
			Kind:    ConnectionRefused(),
			Detail:  err.Error(),
			Title:   fmt.Sprintf("%s is down", ep.Name),
			Message: "Error: Connection refused",
		}
	}
	return unknownOutcome(ep, failureCause(err), err.Error())
}

// failureCause reduces err to a stable class so repeated failures of the same
// kind compare equal even when their text carries ports or addresses.
func failureCause(err error) string {
	var (
		dnsErr      *net.DNSError
		certVerify  *tls.CertificateVerificationError
		certInvalid x509.CertificateInvalidError
		unknownAuth x509.UnknownAuthorityError
		hostname    x509.HostnameError
		record      tls.RecordHeaderError
		opErr       *net.OpError
		urlErr      *url.Error
	)
	switch {
	case errors.As(err, &dnsErr):
		return "dns"
	case errors.As(err, &certInvalid):
		return "tls_certificate_invalid"
	case errors.As(err, &unknownAuth):
		return "tls_unknown_authority"
	case errors.As(err, &hostname):
		return "tls_hostname_mismatch"
	case errors.As(err, &certVerify):
		return "tls_certificate"
	case errors.As(err, &record):
		return "tls_handshake"
	case errors.As(err, &opErr):
		return "net_" + opErr.Op
	case errors.As(err, &urlErr) && urlErr.Err != nil:
		return urlErr.Err.Error()
	}
	return err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func httpErrorOutcome(ep Endpoint, code int) Outcome {
	return Outcome{
		Kind:       HTTPError(code),
		Title:      fmt.Sprintf("%s is down", ep.Name),
		Message:    fmt.Sprintf("Error: %d", code),
		StatusCode: code,
	}
}

func unknownOutcome(ep Endpoint, cause, detail string) Outcome {
	return Outcome{
		Kind:    UnknownError(cause),
		Detail:  detail,
		Title:   fmt.Sprintf("Error when checking %s", ep.Name),
		Message: "Error: " + detail,
	}
}
