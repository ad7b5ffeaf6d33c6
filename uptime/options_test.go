package uptime

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithTimeout_LeavesCallerClientAlone(t *testing.T) {
	hc := &http.Client{Timeout: 30 * time.Second}

	c := New(WithHTTPClient(hc), WithTimeout(2*time.Second), DisableLogs())

	assert.Equal(t, 30*time.Second, hc.Timeout)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, hc, c.httpClient)
}

func TestWithTimeout_DefaultClient(t *testing.T) {
	c := New(WithTimeout(time.Second), DisableLogs())
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}
