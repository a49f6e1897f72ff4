package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/SNE-Labs/SNE-Radar/core"
	"github.com/SNE-Labs/SNE-Radar/ports"
)

const (
	LoginTopic  = "auth.login"
	LogoutTopic = "auth.logout"
)

// LoginEvent is published after a successful login
type LoginEvent struct {
	Address string `json:"address"`
	Tier    string `json:"tier"`
}

// LogoutEvent is published when a session is ended
type LogoutEvent struct {
	Address string `json:"address"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address string, tier core.Tier) error {
	return p.publish(LoginTopic, LoginEvent{Address: address, Tier: string(tier)})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string) error {
	return p.publish(LogoutTopic, LogoutEvent{Address: address})
}
