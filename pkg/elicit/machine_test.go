package elicit

import (
	"testing"
	"time"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine(3)
	require.NoError(t, m.Transition(AwaitingResponse))
	require.NoError(t, m.Transition(Validating))
	require.NoError(t, m.Transition(Satisfied))
	require.NoError(t, m.Terminate(domain.OutcomeSuccess))
	assert.Equal(t, Terminal, m.State())
	assert.Equal(t, domain.OutcomeSuccess, m.Outcome())
	assert.Equal(t, 1, m.Attempts())
}

func TestMachine_Exhaustion(t *testing.T) {
	m := NewMachine(2)
	for i := 0; i < 2; i++ {
		require.NoError(t, m.Transition(AwaitingResponse))
		require.NoError(t, m.Transition(Validating))
		require.NoError(t, m.Transition(Retrying))
	}
	assert.True(t, m.Exhausted())
	require.NoError(t, m.Terminate(domain.OutcomeExhausted))
}

func TestMachine_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(m *Machine) error
	}{
		{"skip awaiting", func(m *Machine) error { return m.Transition(Validating) }},
		{"terminal via Transition", func(m *Machine) error { return m.Transition(Terminal) }},
		{"success before validation", func(m *Machine) error { return m.Terminate(domain.OutcomeSuccess) }},
		{"exhausted with budget left", func(m *Machine) error {
			_ = m.Transition(AwaitingResponse)
			_ = m.Transition(Validating)
			_ = m.Transition(Retrying)
			return m.Terminate(domain.OutcomeExhausted)
		}},
		{"satisfied to retrying", func(m *Machine) error {
			_ = m.Transition(AwaitingResponse)
			_ = m.Transition(Validating)
			_ = m.Transition(Satisfied)
			return m.Transition(Retrying)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(NewMachine(3)), ErrIllegalTransition)
		})
	}
}

func TestMachine_CancelFromAnyState(t *testing.T) {
	for _, prepare := range []func(*Machine){
		func(*Machine) {},
		func(m *Machine) { _ = m.Transition(AwaitingResponse) },
		func(m *Machine) {
			_ = m.Transition(AwaitingResponse)
			_ = m.Transition(Validating)
			_ = m.Transition(Retrying)
		},
	} {
		m := NewMachine(3)
		prepare(m)
		require.NoError(t, m.Terminate(domain.OutcomeCancelled))
		assert.ErrorIs(t, m.Terminate(domain.OutcomeCancelled), ErrIllegalTransition, "terminal is final")
	}
}

func TestPolicy(t *testing.T) {
	p := Policy{MaxAttempts: 5, Backoff: 100 * time.Millisecond, Multiplier: 2, MaxBackoff: 300 * time.Millisecond}
	require.NoError(t, p.Validate())
	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 300*time.Millisecond, p.Delay(3))
	assert.Equal(t, time.Duration(0), p.Delay(0))

	assert.Equal(t, time.Duration(0), DefaultPolicy().Delay(4))
	assert.Equal(t, 100*time.Millisecond, Policy{Backoff: 100 * time.Millisecond}.Delay(3), "multiplier below one means constant")

	assert.Error(t, Policy{}.Validate())
	assert.Error(t, Policy{MaxAttempts: 1, Backoff: -time.Second}.Validate())
}
