package common

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	EventBusChannel = "zerobyte:events"
)

type EventType string

const (
	EventVolumeMounted   EventType = "volume.mounted"
	EventVolumeUnmounted EventType = "volume.unmounted"
	EventVolumeUpdated   EventType = "volume.updated"
)

type Event struct {
	Type EventType      `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// VolumeEvent builds an event carrying the volume identifier and its current
// mount state string.
func VolumeEvent(t EventType, volumeId, state string) Event {
	return Event{
		Type: t,
		Data: map[string]any{
			"volume_id": volumeId,
			"state":     state,
		},
	}
}

// EventBus broadcasts volume lifecycle events. With a Redis client it
// publishes over pub/sub so every process sees every event; without one it
// dispatches to in-process handlers only (local mode).
type EventBus struct {
	rdb      *RedisClient
	channel  string
	handlers map[EventType][]func(Event)
	mu       sync.RWMutex
	ctx      context.Context
}

func NewEventBus(ctx context.Context, rdb *RedisClient) *EventBus {
	return &EventBus{
		rdb:      rdb,
		channel:  EventBusChannel,
		handlers: make(map[EventType][]func(Event)),
		ctx:      ctx,
	}
}

func (eb *EventBus) On(t EventType, fn func(Event)) {
	eb.mu.Lock()
	eb.handlers[t] = append(eb.handlers[t], fn)
	eb.mu.Unlock()
}

func (eb *EventBus) Emit(e Event) {
	if eb.rdb == nil {
		eb.dispatch(e)
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	eb.rdb.Publish(eb.ctx, eb.channel, data)
}

func (eb *EventBus) dispatch(e Event) {
	eb.mu.RLock()
	handlers := eb.handlers[e.Type]
	eb.mu.RUnlock()
	for _, fn := range handlers {
		fn(e)
	}
}

func (eb *EventBus) Start() {
	if eb.rdb == nil {
		<-eb.ctx.Done()
		return
	}
	log.Info().Str("channel", eb.channel).Msg("eventbus started")
	eb.listen()
}

func (eb *EventBus) listen() {
	for {
		if eb.ctx.Err() != nil {
			return
		}
		msgs, errs := eb.rdb.Subscribe(eb.ctx, eb.channel)
		eb.recv(msgs, errs)
	}
}

func (eb *EventBus) recv(msgs <-chan *redis.Message, errs <-chan error) {
	for {
		select {
		case <-eb.ctx.Done():
			return
		case <-errs:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var e Event
			if json.Unmarshal([]byte(msg.Payload), &e) == nil {
				eb.dispatch(e)
			}
		}
	}
}
