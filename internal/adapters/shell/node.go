package shell

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/rbuild/internal/adapters/logger"
	"go.trai.ch/rbuild/internal/adapters/settings"
	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/rbuild/internal/core/ports"
)

// NodeID is the unique identifier for the executor Graft node.
const NodeID graft.ID = "adapter.executor"

func init() {
	graft.Register(graft.Node[ports.Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, settings.NodeID},
		Run: func(ctx context.Context) (ports.Executor, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			s, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewExecutor(log,
				WithGracePeriod(s.GracePeriod),
				WithTTYMode(s.TTY),
				WithStdin(os.Stdin),
			), nil
		},
	})
}
