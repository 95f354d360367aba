package sse

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UpdateEvent describes one committed log mutation.
type UpdateEvent struct {
	Action string `json:"action"` // insert / update / delete
	Dwg    string `json:"dwg"`
}

// Notifier announces committed mutations.  With redis configured, events
// go through a shared channel so every process instance sharing the store
// learns of the change; otherwise they fan out to local clients only.
type Notifier struct {
	hub     *Hub
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

func NewNotifier(hub *Hub, rdb *redis.Client, channel string, logger *zap.Logger) *Notifier {
	return &Notifier{hub: hub, rdb: rdb, channel: channel, logger: logger}
}

// PublishLogUpdate announces a committed mutation.  When redis is in
// play, the local hub hears the event back through Run's subscription.
func (n *Notifier) PublishLogUpdate(action, dwg string) {
	payload, _ := json.Marshal(UpdateEvent{Action: action, Dwg: dwg})
	if n.rdb != nil {
		if err := n.rdb.Publish(context.Background(), n.channel, payload).Err(); err != nil {
			n.logger.Warn("redis publish failed, falling back to local broadcast",
				zap.Error(err))
			n.hub.Broadcast(Event{EventType: "log_update", Data: string(payload)})
		}
		return
	}
	n.hub.Broadcast(Event{EventType: "log_update", Data: string(payload)})
}

// Run relays the shared redis channel into the local hub until ctx ends.
// No-op when redis is not configured.
func (n *Notifier) Run(ctx context.Context) {
	if n.rdb == nil {
		return
	}
	sub := n.rdb.Subscribe(ctx, n.channel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			n.hub.Broadcast(Event{EventType: "log_update", Data: msg.Payload})
		}
	}
}
