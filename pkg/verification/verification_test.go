package verification_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/elicitation/pkg/verification"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_AllPass(t *testing.T) {
	reg := verification.Builtin()
	assert.Equal(t, []string{"contract", "foundation", "wrapper"}, reg.Modules())

	report := (&verification.Runner{Concurrency: 4}).Run(context.Background(), reg.All())
	for _, res := range report.Results {
		assert.Equal(t, verification.StatusPass, res.Status, "%s: %v", res.ID(), res.Err)
	}
	assert.False(t, report.Failed())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := verification.NewRegistry()
	h := verification.Harness{Module: "m", Name: "a", Check: func(context.Context) error { return nil }}
	require.NoError(t, reg.Register(h))
	assert.ErrorIs(t, reg.Register(h), verification.ErrDuplicateHarness)
	assert.Error(t, reg.Register(verification.Harness{Module: "m", Name: "nil"}))
}

func TestRunner_IsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	hs := []verification.Harness{
		{Module: "m", Name: "ok", Check: func(context.Context) error { return nil }},
		{Module: "m", Name: "fails", Check: func(context.Context) error { return boom }},
		{Module: "m", Name: "panics", Check: func(context.Context) error { panic("bad") }},
		{Module: "m", Name: "after", Check: func(context.Context) error { return nil }},
	}

	report := (&verification.Runner{Concurrency: 1}).Run(context.Background(), hs)

	require.Len(t, report.Results, 4)
	assert.Equal(t, verification.StatusPass, report.Results[0].Status)
	assert.Equal(t, verification.StatusFail, report.Results[1].Status)
	assert.ErrorIs(t, report.Results[1].Err, boom)
	assert.Equal(t, verification.StatusFail, report.Results[2].Status)
	assert.Contains(t, report.Results[2].Err.Error(), "panicked")
	assert.Equal(t, verification.StatusPass, report.Results[3].Status)
	assert.True(t, report.Failed())
	assert.Equal(t, 2, report.Count(verification.StatusFail))
}

func TestRunner_Timeout(t *testing.T) {
	slow := verification.Harness{Module: "m", Name: "slow", Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	report := (&verification.Runner{Timeout: 10 * time.Millisecond}).Run(context.Background(), []verification.Harness{slow})

	assert.Equal(t, verification.StatusFail, report.Results[0].Status)
	assert.ErrorIs(t, report.Results[0].Err, context.DeadlineExceeded)
}

func TestRunner_CancelledSkips(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hs := []verification.Harness{{Module: "m", Name: "a", Check: func(context.Context) error { return nil }}}

	report := (&verification.Runner{}).Run(ctx, hs)

	assert.Equal(t, verification.StatusSkipped, report.Results[0].Status)
	assert.True(t, report.Failed())
}

func TestReport_CSV(t *testing.T) {
	report := &verification.Report{Results: []verification.Result{
		{Module: "foundation", Name: "a", Status: verification.StatusPass, Duration: 1500 * time.Microsecond},
		{Module: "wrapper", Name: "b", Status: verification.StatusFail, Err: errors.New("bad, really")},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"module", "name", "status", "duration_ms", "error"},
		{"foundation", "a", "pass", "1", ""},
		{"wrapper", "b", "fail", "0", "bad, really"},
	}, rows)
}

func TestReport_RenderPlain(t *testing.T) {
	report := &verification.Report{Results: []verification.Result{
		{Module: "m", Name: "a", Status: verification.StatusPass},
		{Module: "m", Name: "b", Status: verification.StatusFail, Err: errors.New("nope")},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, termenv.Ascii))

	out := buf.String()
	assert.Contains(t, out, "pass    m/a")
	assert.Contains(t, out, "fail    m/b (0s): nope")
	assert.Contains(t, out, "1 passed, 1 failed, 0 skipped")
	assert.NotContains(t, out, "\x1b[")
}
