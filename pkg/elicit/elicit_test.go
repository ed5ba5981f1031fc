package elicit_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/elicitation/pkg/adapters/memory"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaf_BoundedInteger(t *testing.T) {
	ctx := context.Background()

	t.Run("valid answer on first round", func(t *testing.T) {
		ch := memory.Script("57")
		v, err := elicit.Run(ctx, ch, cappedDescriptor())
		require.NoError(t, err)
		assert.Equal(t, 57, v.Get())
		assert.Len(t, ch.Prompts(), 1)
	})

	tests := []struct {
		name      string
		first     string
		violation domain.Violation
	}{
		{"negative is not positive", "-3", domain.ViolationNotPositive},
		{"above the cap", "150", domain.ViolationAboveMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := memory.Script(tt.first, "57")
			v, err := elicit.Run(ctx, ch, cappedDescriptor())
			require.NoError(t, err)
			assert.Equal(t, 57, v.Get())

			prompts := ch.Prompts()
			require.Len(t, prompts, 2, "exactly one retry prompt")
			assert.Empty(t, prompts[0].Correction)
			assert.Contains(t, prompts[1].Correction, string(tt.violation))
			assert.Equal(t, 2, prompts[1].Attempt)
			assert.Equal(t, 2, prompts[1].Round)
		})
	}
}

func TestLeaf_RetryDeterminism(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		answers := make([]string, n+3)
		for i := range answers {
			answers[i] = "0"
		}
		ch := memory.Script(answers...)

		_, err := elicit.Run(context.Background(), ch, cappedDescriptor(),
			elicit.WithPolicy(elicit.Policy{MaxAttempts: n}))
		require.Error(t, err)

		var exhausted *domain.ExhaustedError
		require.True(t, errors.As(err, &exhausted))
		assert.Equal(t, n, exhausted.Attempts)
		assert.ErrorIs(t, err, domain.ErrNotPositive)
		assert.Equal(t, domain.KindExhausted, domain.KindOf(err))
		assert.Equal(t, domain.OutcomeExhausted, elicit.OutcomeOf(err))
		assert.Equal(t, n, ch.Consumed(), "no response is consumed past the budget")
	}
}

func TestLeaf_EmptyResponsesCountAgainstBudget(t *testing.T) {
	ch := memory.NewChannel(memory.Silence(), memory.Silence(), memory.Silence(), memory.Reply("7"))
	_, err := elicit.Run(context.Background(), ch, cappedDescriptor())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	assert.Equal(t, domain.KindExhausted, domain.KindOf(err))
	assert.Equal(t, elicit.DefaultMaxAttempts, ch.Consumed())
}

func TestLeaf_ParseFailureIsRetried(t *testing.T) {
	ch := memory.Script("fifty", "50")
	v, err := elicit.Run(context.Background(), ch, cappedDescriptor())
	require.NoError(t, err)
	assert.Equal(t, 50, v.Get())
	assert.Contains(t, ch.Prompts()[1].Correction, "invalid format")
}

func TestLeaf_ChannelFailureIsTerminal(t *testing.T) {
	boom := errors.New("connection reset")
	ch := memory.NewChannel(memory.Fail(boom), memory.Reply("5"))

	_, err := elicit.Run(context.Background(), ch, cappedDescriptor())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.KindChannel, domain.KindOf(err))
	assert.Equal(t, domain.OutcomeFailed, elicit.OutcomeOf(err))
	assert.Equal(t, 1, ch.Consumed(), "channel failures are not retried")
}

func TestLeaf_RoundTimeout(t *testing.T) {
	ch := memory.NewChannel(memory.Block())
	_, err := elicit.Run(context.Background(), ch, cappedDescriptor(),
		elicit.WithPolicy(elicit.Policy{MaxAttempts: 3, RoundTimeout: 20 * time.Millisecond}))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrChannelTimeout)
	assert.Equal(t, domain.KindChannel, domain.KindOf(err))
	assert.Equal(t, domain.OutcomeFailed, elicit.OutcomeOf(err))
}

func TestLeaf_CancelMidWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := memory.NewChannel(memory.Reply("-1"), memory.Block(), memory.Reply("5"))

	go func() {
		<-ch.Waiting()
		cancel()
	}()

	_, err := elicit.Run(ctx, ch, cappedDescriptor(), elicit.WithPolicy(elicit.Policy{MaxAttempts: 5}))
	require.Error(t, err)

	var cancelled *domain.CancelledError
	require.True(t, errors.As(err, &cancelled))
	assert.Equal(t, 2, cancelled.Round)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
	assert.Equal(t, domain.OutcomeCancelled, elicit.OutcomeOf(err))
	assert.Equal(t, 2, ch.Consumed(), "no further response is processed")
}

func TestLeaf_CancelIgnoredByChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	defer close(release)

	deaf := ports.ChannelFunc(func(context.Context, domain.Prompt) (domain.Response, error) {
		<-release
		return domain.TextResponse("5"), nil
	}).Bind()

	time.AfterFunc(10*time.Millisecond, cancel)
	start := time.Now()
	_, err := elicit.Run(ctx, deaf, cappedDescriptor())

	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestLeaf_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := memory.Script("5")

	_, err := elicit.Run(ctx, ch, cappedDescriptor())
	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
	assert.Empty(t, ch.Prompts())
}

func TestLeaf_BackoffIsCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := memory.Script("0", "5")
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := elicit.Run(ctx, ch, cappedDescriptor(),
		elicit.WithPolicy(elicit.Policy{MaxAttempts: 3, Backoff: time.Hour}))
	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, ch.Consumed())
}

func TestLeaf_Sanitizes(t *testing.T) {
	ch := memory.Script("ex\x00ample.com")
	v, err := elicit.Run(context.Background(), ch, hostDescriptor())
	require.NoError(t, err)
	assert.Equal(t, "example.com", v.Get())

	ch = memory.Script(strings.Repeat("a", 64), "short")
	v, err = elicit.Run(context.Background(), ch, hostDescriptor(), elicit.WithMaxResponseBytes(16))
	require.NoError(t, err)
	assert.Equal(t, "short", v.Get())
}

func TestStruct_CollectsFieldsInOrder(t *testing.T) {
	ch := memory.Script("example.com", "8080")
	v, err := elicit.Run(context.Background(), ch, newServerAddress(t))
	require.NoError(t, err)
	assert.Equal(t, "example.com", v.Host.Get())
	assert.Equal(t, uint16(8080), v.Port.Get())

	prompts := ch.Prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, "host", prompts[0].Field)
	assert.Equal(t, "port", prompts[1].Field)
}

func TestStruct_FailureReportsField(t *testing.T) {
	ch := memory.Script("", "8080")
	_, err := elicit.Run(context.Background(), ch, newServerAddress(t),
		elicit.WithPolicy(elicit.Policy{MaxAttempts: 1}))
	require.Error(t, err)

	var comp *domain.CompositionError
	require.True(t, errors.As(err, &comp))
	assert.Equal(t, "ServerAddress", comp.Type)
	assert.Equal(t, "host", comp.Field)
	assert.Equal(t, domain.KindComposition, domain.KindOf(err))
	assert.Equal(t, domain.KindExhausted, domain.TerminalKind(err))
	assert.ErrorIs(t, err, domain.ErrEmptyString)
	assert.Equal(t, 1, ch.Consumed(), "port is never asked")
}

func TestRunStruct_ReturnsEvidence(t *testing.T) {
	v, proof, err := elicit.RunStruct(context.Background(), memory.Script("db", "5432"), newServerAddress(t))
	require.NoError(t, err)
	assert.Equal(t, "db", v.Host.Get())
	assert.Equal(t, "all fields of elicit_test.serverAddress", proof.Proposition())
}

func TestStruct_Nested(t *testing.T) {
	type endpoint struct {
		Name    wrapper.NonEmptyString
		Address serverAddress
	}
	d, err := elicit.Struct("Endpoint",
		elicit.Field("name", hostDescriptor(), func(e *endpoint, n wrapper.NonEmptyString) { e.Name = n }),
		elicit.Field("address", newServerAddress(t), func(e *endpoint, a serverAddress) { e.Address = a }),
	)
	require.NoError(t, err)

	ch := memory.Script("primary", "db", "0")
	_, err = elicit.Run(context.Background(), ch, d, elicit.WithPolicy(elicit.Policy{MaxAttempts: 1}))
	require.Error(t, err)
	assert.Equal(t, "address.port", domain.FieldPath(err))
	assert.Equal(t, "address.port", ch.Prompts()[2].Field)
}

func TestStruct_ParallelFields(t *testing.T) {
	var calls atomic.Int32
	ch := ports.ChannelFunc(func(_ context.Context, p domain.Prompt) (domain.Response, error) {
		calls.Add(1)
		switch p.Field {
		case "host":
			return domain.TextResponse("example.com"), nil
		case "port":
			return domain.TextResponse("443"), nil
		}
		return domain.Response{}, errors.New("unexpected field " + p.Field)
	}).Bind()

	v, err := elicit.Run(context.Background(), ch, newServerAddress(t), elicit.WithParallelFields(2))
	require.NoError(t, err)
	assert.Equal(t, "example.com", v.Host.Get())
	assert.Equal(t, uint16(443), v.Port.Get())
	assert.Equal(t, int32(2), calls.Load())
}

func TestStruct_ParallelReportsFirstFieldInDeclarationOrder(t *testing.T) {
	ch := ports.ChannelFunc(func(_ context.Context, p domain.Prompt) (domain.Response, error) {
		if p.Field == "port" {
			return domain.TextResponse("0"), nil
		}
		time.Sleep(10 * time.Millisecond)
		return domain.TextResponse(""), nil
	}).Bind()

	_, err := elicit.Run(context.Background(), ch, newServerAddress(t),
		elicit.WithParallelFields(2), elicit.WithPolicy(elicit.Policy{MaxAttempts: 1}))
	require.Error(t, err)
	assert.Equal(t, "host", domain.FieldPath(err))
}

func TestEnum_UnitVariantAsksNoPayload(t *testing.T) {
	ch := memory.Script("point")
	v, err := elicit.Run(context.Background(), ch, newShape(t))
	require.NoError(t, err)
	assert.Equal(t, "point", v.kind)

	prompts := ch.Prompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, domain.PromptSelect, prompts[0].Kind)
	assert.Equal(t, []string{"circle", "point"}, prompts[0].Options)
}

func TestEnum_PayloadVariantAsksOneMoreRound(t *testing.T) {
	ch := memory.Script("circle", "5")
	v, err := elicit.Run(context.Background(), ch, newShape(t))
	require.NoError(t, err)
	assert.Equal(t, shape{kind: "circle", radius: 5}, v)

	prompts := ch.Prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, "circle", prompts[1].Field)
}

func TestEnum_UnknownSelectorIsRetried(t *testing.T) {
	ch := memory.Script("square", "point")
	v, err := elicit.Run(context.Background(), ch, newShape(t))
	require.NoError(t, err)
	assert.Equal(t, "point", v.kind)
	assert.Contains(t, ch.Prompts()[1].Correction, "one of circle, point")
}

func TestEnum_PayloadFailureNamesVariant(t *testing.T) {
	ch := memory.Script("circle", "-1")
	_, err := elicit.Run(context.Background(), ch, newShape(t), elicit.WithPolicy(elicit.Policy{MaxAttempts: 1}))
	require.Error(t, err)
	assert.Equal(t, "circle", domain.FieldPath(err))
	assert.Equal(t, domain.KindExhausted, domain.TerminalKind(err))
}

func TestEnum_StructuredSelector(t *testing.T) {
	ch := memory.NewChannel(memory.ReplyData(map[string]any{"variant": "circle"}), memory.ReplyData(float64(3)))
	v, err := elicit.Run(context.Background(), ch, newShape(t))
	require.NoError(t, err)
	assert.Equal(t, int32(3), v.radius)
}

func TestSelectAffirmOptional(t *testing.T) {
	ctx := context.Background()

	color, err := elicit.Run(ctx, memory.Script("purple", "RED"), elicit.Select("Color", "Colour?", "red", "green"))
	require.NoError(t, err)
	assert.Equal(t, "red", color)

	ok, err := elicit.Run(ctx, memory.Script("y"), elicit.Affirm("Confirm", "Proceed?"))
	require.NoError(t, err)
	assert.True(t, ok)

	opt := elicit.Optional("Set a port?", portDescriptor())
	p, err := elicit.Run(ctx, memory.Script("no"), opt)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = elicit.Run(ctx, memory.Script("yes", "22"), opt)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, uint16(22), p.Get())
}

func TestOptional_PresenceHasOwnPath(t *testing.T) {
	ch := memory.Script("yes", "22")
	_, err := elicit.Run(context.Background(), ch, elicit.Optional("Set a port?", portDescriptor()))
	require.NoError(t, err)

	prompts := ch.Prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, "present", prompts[0].Field)
	assert.Equal(t, "", prompts[1].Field)
	assert.NotEqual(t, prompts[0].Field, prompts[1].Field)
}

func TestSlice(t *testing.T) {
	d := elicit.Slice("Hosts", "How many hosts?", hostDescriptor(), 3)

	ch := memory.Script("5", "2", "a", "b")
	v, err := elicit.Run(context.Background(), ch, d)
	require.NoError(t, err)
	require.Len(t, v, 2)
	assert.Equal(t, "b", v[1].Get())
	assert.Equal(t, "1", ch.Prompts()[3].Field)

	_, err = elicit.Run(context.Background(), memory.Script("1", ""), d, elicit.WithPolicy(elicit.Policy{MaxAttempts: 1}))
	assert.Equal(t, "0", domain.FieldPath(err))
}

func TestDecoded(t *testing.T) {
	type limits struct {
		CPU    int    `json:"cpu"`
		Memory string `json:"memory"`
	}
	d := elicit.Decoded("Limits", "Resource limits?", func(l limits) error {
		if l.CPU <= 0 {
			return errors.New("cpu must be positive")
		}
		return nil
	})

	schema := d.Schema()
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema["properties"], "cpu")

	ch := memory.NewChannel(
		memory.ReplyData(map[string]any{"cpu": float64(0), "memory": "1Gi"}),
		memory.Reply(`{"cpu": 2, "memory": "1Gi"}`),
	)
	v, err := elicit.Run(context.Background(), ch, d)
	require.NoError(t, err)
	assert.Equal(t, limits{CPU: 2, Memory: "1Gi"}, v)
	assert.Contains(t, ch.Prompts()[1].Correction, string(domain.ViolationRejected))
}

func TestConstructWithoutConversation(t *testing.T) {
	d := newServerAddress(t)
	v, err := d.Construct(map[string]any{"host": "db", "port": float64(5432)})
	require.NoError(t, err)
	assert.Equal(t, uint16(5432), v.Port.Get())

	_, err = d.Construct(map[string]any{"host": "db", "port": "0"})
	require.Error(t, err)
	assert.Equal(t, "port", domain.FieldPath(err))

	s, err := newShape(t).Construct(map[string]any{"variant": "circle", "value": "4"})
	require.NoError(t, err)
	assert.Equal(t, int32(4), s.radius)
}

func TestHooks(t *testing.T) {
	var (
		mu       sync.Mutex
		starts   int
		retries  int
		outcomes []domain.Outcome
		ids      = map[string]bool{}
	)
	hooks := domain.LifecycleHooks{
		OnRoundStart: func(_ context.Context, e *domain.RoundEvent) {
			mu.Lock()
			defer mu.Unlock()
			starts++
			ids[e.SessionID] = true
		},
		OnRetry: func(_ context.Context, e *domain.RoundEvent) {
			mu.Lock()
			defer mu.Unlock()
			retries++
			assert.Error(t, e.Err)
		},
		OnTerminal: func(_ context.Context, e *domain.TerminalEvent) {
			mu.Lock()
			defer mu.Unlock()
			outcomes = append(outcomes, e.Outcome)
			assert.Equal(t, 3, e.Rounds)
		},
	}

	_, err := elicit.Run(context.Background(), memory.Script("x", "0", "5"), cappedDescriptor(), elicit.WithHooks(hooks))
	require.NoError(t, err)
	assert.Equal(t, 3, starts)
	assert.Equal(t, 2, retries)
	assert.Equal(t, []domain.Outcome{domain.OutcomeSuccess}, outcomes)
	assert.Len(t, ids, 1)
}

func TestRecorder(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_, err := elicit.Run(ctx, memory.Script("example.com", "0", "80"), newServerAddress(t),
		elicit.WithRecorder(store), elicit.WithSessionID("s-1"))
	require.NoError(t, err)

	tr, err := store.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "ServerAddress", tr.Type)
	assert.Equal(t, domain.OutcomeSuccess, tr.Outcome)
	require.Len(t, tr.Rounds, 3)
	assert.Equal(t, "port", tr.Rounds[1].Field)
	assert.Contains(t, tr.Rounds[1].Rejection, "not_positive")
	assert.Empty(t, tr.Rounds[2].Rejection)
	assert.False(t, tr.FinishedAt.Before(tr.StartedAt))
}

func TestRecorder_SavesCancelledSession(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	ch := memory.NewChannel(memory.Block())
	go func() {
		<-ch.Waiting()
		cancel()
	}()

	_, err := elicit.Run(ctx, ch, cappedDescriptor(), elicit.WithRecorder(store))
	require.Error(t, err)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	tr, err := store.Load(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCancelled, tr.Outcome)
	assert.NotEmpty(t, tr.Error)
}

func TestRun_RejectsInvalidPolicy(t *testing.T) {
	_, err := elicit.Run(context.Background(), memory.Script("1"), cappedDescriptor(),
		elicit.WithPolicy(elicit.Policy{MaxAttempts: 0}))
	assert.Error(t, err)

	_, err = elicit.Run(context.Background(), nil, cappedDescriptor())
	assert.Error(t, err)
}
