package hub

import (
	"context"
	"time"
)

// WriteFunc delivers one event to the monitor's connection.
type WriteFunc func(Event) error

// Drain writes the subscriber's events in publish order until ctx is done,
// the subscriber is dropped, or write fails. When no event arrives within
// the heartbeat interval a heartbeat is written instead.
// Callers should defer Unsubscribe.
func (h *Hub) Drain(ctx context.Context, sub *Subscriber, write WriteFunc) error {
	interval := h.config.HeartbeatInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-sub.done:
			return ErrSubscriberDropped

		case event := <-sub.events:
			if err := write(event); err != nil {
				return err
			}

		case <-timer.C:
			event := HeartbeatEvent()
			// An event that raced the timer still goes first.
			select {
			case queued := <-sub.events:
				event = queued
			default:
			}
			if err := write(event); err != nil {
				return err
			}
		}

		timer.Reset(interval)
	}
}
