package generate

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/geo-cli/internal/gateway"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req gateway.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
