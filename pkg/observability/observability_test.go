package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/elicitation/pkg/adapters/memory"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/observability"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portDescriptor() *elicit.LeafDescriptor[wrapper.PositiveU16] {
	return elicit.Int[uint16]("Port", "Which port?", wrapper.NewPositive[uint16])
}

func TestMetrics_FedByHooks(t *testing.T) {
	m := observability.NewMetrics()
	ch := memory.Script("zero", "0", "8080")

	_, err := elicit.Run(context.Background(), ch, portDescriptor(), elicit.WithHooks(m.Hooks()))
	require.NoError(t, err)

	expected := `
# HELP elicitation_rejections_total Rejected responses, by elicited type and violation.
# TYPE elicitation_rejections_total counter
elicitation_rejections_total{type="Port",violation="not_positive"} 1
elicitation_rejections_total{type="Port",violation="parse"} 1
# HELP elicitation_retries_total Rounds that were rejected and asked again, by elicited type.
# TYPE elicitation_retries_total counter
elicitation_retries_total{type="Port"} 2
# HELP elicitation_rounds_total Prompt/response rounds, by elicited type.
# TYPE elicitation_rounds_total counter
elicitation_rounds_total{type="Port"} 3
# HELP elicitation_sessions_total Finished sessions, by elicited type and outcome.
# TYPE elicitation_sessions_total counter
elicitation_sessions_total{outcome="success",type="Port"} 1
# HELP elicitation_rounds_in_flight Rounds waiting for a response.
# TYPE elicitation_rounds_in_flight gauge
elicitation_rounds_in_flight 0
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"elicitation_rejections_total",
		"elicitation_retries_total",
		"elicitation_rounds_total",
		"elicitation_sessions_total",
		"elicitation_rounds_in_flight",
	))
}

func TestMetrics_ExhaustedOutcome(t *testing.T) {
	m := observability.NewMetrics()
	ch := memory.Script("0", "0")

	_, err := elicit.Run(context.Background(), ch, portDescriptor(),
		elicit.WithHooks(m.Hooks()),
		elicit.WithPolicy(elicit.Policy{MaxAttempts: 2, Multiplier: 1}))
	require.Error(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "elicitation_session_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	_, err := elicit.Run(context.Background(), memory.Script("1"), portDescriptor(), elicit.WithHooks(m.Hooks()))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `elicitation_sessions_total{outcome="success",type="Port"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := elicit.Run(context.Background(), memory.Script("x", "2"), portDescriptor(),
		elicit.WithHooks(observability.LogHooks(logger)))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=round_start")
	assert.Contains(t, out, "msg=round_rejected")
	assert.Contains(t, out, "msg=retry")
	assert.Contains(t, out, "msg=terminal")
	assert.Contains(t, out, "outcome=success")
}
