package ports

import (
	"context"

	"github.com/SNE-Labs/SNE-Radar/core"
)

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, tier core.Tier) error
	PublishLogout(ctx context.Context, address string) error
}
