package elicitation_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/elicitation"
	"github.com/aretw0/elicitation/pkg/adapters/memory"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/observability"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func port() *elicit.LeafDescriptor[wrapper.PositiveU16] {
	return elicit.Int("Port", "Port?", wrapper.NewPositive[uint16])
}

func TestElicit(t *testing.T) {
	store := memory.NewStore()
	metrics := observability.NewMetrics()
	c, err := elicitation.New(memory.Script("0", "443"),
		elicitation.WithTranscriptStore(store),
		elicitation.WithMetrics(metrics),
	)
	require.NoError(t, err)

	v, err := elicitation.Elicit(context.Background(), c, port())
	require.NoError(t, err)
	assert.Equal(t, uint16(443), v.Get())

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestElicit_Exhausted(t *testing.T) {
	c, err := elicitation.New(memory.Script("0", "0"), elicitation.WithPolicy(elicit.Policy{MaxAttempts: 2, Multiplier: 1}))
	require.NoError(t, err)

	_, err = elicitation.Elicit(context.Background(), c, port())
	assert.Equal(t, domain.KindExhausted, domain.TerminalKind(err))
}

func TestElicit_ConcurrentOnExchanger(t *testing.T) {
	var arrived atomic.Int32
	both := make(chan struct{})

	ch := ports.ChannelFunc(func(ctx context.Context, p domain.Prompt) (domain.Response, error) {
		if arrived.Add(1) == 2 {
			close(both)
		}
		select {
		case <-both:
			return domain.TextResponse("8080"), nil
		case <-ctx.Done():
			return domain.Response{}, domain.ClassifyChannel("exchange", ctx.Err())
		}
	}).Bind()

	c, err := elicitation.New(ch, elicitation.WithPolicy(elicit.Policy{
		MaxAttempts:  1,
		Multiplier:   1,
		RoundTimeout: 2 * time.Second,
	}))
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = elicitation.Elicit(context.Background(), c, port())
		}()
	}
	wg.Wait()
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestElicit_SerialisesPlainChannel(t *testing.T) {
	ch := memory.Script("1", "2")
	c, err := elicitation.New(ch)
	require.NoError(t, err)

	got := make([]uint16, 2)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := elicitation.Elicit(context.Background(), c, port())
			assert.NoError(t, err)
			got[i] = v.Get()
		}()
	}
	wg.Wait()
	assert.ElementsMatch(t, []uint16{1, 2}, got)
	assert.Equal(t, 2, ch.Consumed())
}

func TestElicitStruct(t *testing.T) {
	type pair struct{ A, B wrapper.PositiveU16 }
	d, err := elicit.Struct("Pair",
		elicit.Field("a", port(), func(p *pair, v wrapper.PositiveU16) { p.A = v }),
		elicit.Field("b", port(), func(p *pair, v wrapper.PositiveU16) { p.B = v }),
	)
	require.NoError(t, err)

	c, err := elicitation.New(memory.Script("1", "2"))
	require.NoError(t, err)
	v, proof, err := elicitation.ElicitStruct(context.Background(), c, d)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), v.B.Get())
	assert.Contains(t, proof.Proposition(), "all fields")
}

func TestCall(t *testing.T) {
	r := tool.NewRegistry()
	require.NoError(t, tool.Register(r, port(), "A port."))

	c, err := elicitation.New(memory.Script("8080"), elicitation.WithRegistry(r))
	require.NoError(t, err)
	assert.Len(t, c.Tools(), 1)

	v, err := c.Call(context.Background(), "elicit_port")
	require.NoError(t, err)
	assert.Equal(t, uint16(8080), v.(wrapper.PositiveU16).Get())

	_, err = c.Call(context.Background(), "elicit_missing")
	assert.ErrorIs(t, err, tool.ErrUnknownTool)

	bare, err := elicitation.New(memory.Script())
	require.NoError(t, err)
	_, err = bare.Call(context.Background(), "elicit_port")
	assert.ErrorIs(t, err, elicitation.ErrNoRegistry)
}

func TestNew_Rejects(t *testing.T) {
	_, err := elicitation.New(nil)
	assert.Error(t, err)

	_, err = elicitation.New(memory.Script(), elicitation.WithPolicy(elicit.Policy{}))
	assert.Error(t, err)
}
