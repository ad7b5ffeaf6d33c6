// Package uptime defines core types for the uptime checker.
package uptime

import (
	"fmt"
	"time"
)

type LogLevel int

const (
	LogNone  LogLevel = iota // no logs
	LogError                 // only errors
	LogInfo                  // info + errors
	LogDebug                 // verbose
)

// KindCode is the discriminant of a probe outcome.
type KindCode string

const (
	KindHealthy           KindCode = "healthy"
	KindEmptyResponse     KindCode = "empty_response"
	KindHTTPError         KindCode = "http_error"
	KindTimeout           KindCode = "timeout"
	KindConnectionRefused KindCode = "connection_refused"
	KindUnknownError      KindCode = "unknown_error"
)

// Valid reports whether c is one of the known kind codes.
func (c KindCode) Valid() bool {
	switch c {
	case KindHealthy, KindEmptyResponse, KindHTTPError, KindTimeout, KindConnectionRefused, KindUnknownError:
		return true
	}
	return false
}

// Kind classifies a probe outcome. Two kinds are the same status iff they
// compare equal with ==. HTTPStatus is only set for KindHTTPError and Cause
// only for KindUnknownError.
type Kind struct {
	Code       KindCode `json:"code"`
	HTTPStatus int      `json:"http_status,omitempty"`
	Cause      string   `json:"cause,omitempty"`
}

func Healthy() Kind           { return Kind{Code: KindHealthy} }
func EmptyResponse() Kind     { return Kind{Code: KindEmptyResponse} }
func HTTPError(code int) Kind { return Kind{Code: KindHTTPError, HTTPStatus: code} }
func Timeout() Kind           { return Kind{Code: KindTimeout} }
func ConnectionRefused() Kind { return Kind{Code: KindConnectionRefused} }

// UnknownError builds an unknown-failure kind. cause should be a stable
// description of the failure class, free of ports and timestamps.
func UnknownError(cause string) Kind { return Kind{Code: KindUnknownError, Cause: cause} }

func (k Kind) IsHealthy() bool { return k.Code == KindHealthy }

func (k Kind) String() string {
	switch k.Code {
	case KindHTTPError:
		return fmt.Sprintf("%s(%d)", k.Code, k.HTTPStatus)
	case KindUnknownError:
		if k.Cause != "" {
			return fmt.Sprintf("%s(%s)", k.Code, k.Cause)
		}
	}
	return string(k.Code)
}

// GraceDelays maps a kind to how long it must persist before it is reported.
// Kinds missing from the table are reported immediately.
type GraceDelays map[KindCode]time.Duration

// For returns the grace delay configured for k.
func (g GraceDelays) For(k Kind) time.Duration {
	if g == nil {
		return 0
	}
	return g[k.Code]
}

// Outcome is the classified result of one probe.
type Outcome struct {
	Kind       Kind          `json:"kind"`
	Detail     string        `json:"detail,omitempty"`
	Title      string        `json:"title"`
	Message    string        `json:"message"`
	GraceDelay time.Duration `json:"grace_delay"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency"`
	CheckedAt  time.Time     `json:"checked_at"`
}

type Endpoint struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	URL            string        `json:"url"`
	Method         string        `json:"method"`
	Frequency      time.Duration `json:"frequency"`
	Schedule       string        `json:"schedule,omitempty"`
	ExpectedStatus int           `json:"expected_status,omitempty"`
}

// Result represents the outcome of a check
type Result struct {
	Endpoint  Endpoint  `json:"endpoint"`
	Timestamp time.Time `json:"timestamp"`
	Outcome   Outcome   `json:"outcome"`
	Notified  bool      `json:"notified"`
}

// Success reports whether the check found the endpoint healthy.
func (r Result) Success() bool { return r.Outcome.Kind.IsHealthy() }

// Notification is what every sink receives when a status change is reported.
type Notification struct {
	ID       string    `json:"id"`
	Endpoint Endpoint  `json:"endpoint"`
	Outcome  Outcome   `json:"outcome"`
	At       time.Time `json:"at"`
}
