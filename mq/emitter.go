package mq

import (
	"context"
	"encoding/json"
	"log"

	"hirehub/models"

	"github.com/redis/go-redis/v9"
)

// Channel carries every job and application event.
const Channel = "job-events"

type Emitter struct {
	conn *redis.Client
}

func NewEmitter(conn *redis.Client) *Emitter {
	return &Emitter{conn: conn}
}

// Emit publishes evt to redis. Failures are logged and never reach the caller;
// events are notifications, not part of the write.
func (e *Emitter) Emit(ctx context.Context, evt models.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event %s: %v", evt.Type, err)
		return
	}
	if e == nil || e.conn == nil {
		log.Printf("[Emit] %s job=%s (redis disabled)", evt.Type, evt.JobID)
		return
	}
	if err := e.conn.Publish(ctx, Channel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s: %v", evt.Type, err)
		return
	}
}

// Listen subscribes to Channel and calls fn for every decoded event until ctx
// is cancelled.
func (e *Emitter) Listen(ctx context.Context, fn func(models.Event)) {
	if e == nil || e.conn == nil {
		return
	}
	sub := e.conn.Subscribe(ctx, Channel)
	defer sub.Close()

	// wait for the subscription to be confirmed so no event published after
	// Listen starts is missed
	if _, err := sub.Receive(ctx); err != nil {
		log.Printf("[EventWorker] subscribe failed: %v", err)
		return
	}

	log.Println("[EventWorker] Listening for job events...")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Printf("[EventWorker] Failed to parse event: %v", err)
				continue
			}
			fn(evt)
		}
	}
}
