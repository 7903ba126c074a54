package tools

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// Connect closes the current connection, which clears the catalog cache, and
// connects to args.Addrs.
func (s *Service) Connect(ctx context.Context, args ConnectArgs) (*ConnectResult, error) {
	return invoke(ctx, s, ToolConnect, args.Confirm, nil, func(ctx context.Context) (*ConnectResult, error) {
		if len(args.Addrs) == 0 {
			return nil, fmt.Errorf("addrs is required: %w", domain.ErrInvalidArgument)
		}
		target := connection.Target{Addrs: args.Addrs, Username: args.Username, Password: args.Password}
		if err := s.conns.Connect(ctx, target); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConnectionFailed, err)
		}
		return &ConnectResult{
			Target:  target.String(),
			Message: "Connected to " + target.String(),
		}, nil
	})
}
