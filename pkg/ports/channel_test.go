package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/ports"
)

func TestChannelFunc_Contract(t *testing.T) {
	ports.RunChannelContract(t, func(responses ...domain.Response) ports.Channel {
		i := 0
		return ports.ChannelFunc(func(ctx context.Context, _ domain.Prompt) (domain.Response, error) {
			if i < len(responses) {
				r := responses[i]
				i++
				return r, nil
			}
			<-ctx.Done()
			return domain.Response{}, domain.ClassifyChannel("await", ctx.Err())
		}).Bind()
	})
}
