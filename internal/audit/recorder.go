// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/backoffice-tui/internal/events"
	"github.com/jeranaias/backoffice-tui/internal/logging"
)

// recordTimeout bounds a single write from a bus handler.
const recordTimeout = 2 * time.Second

// Recorder writes session events from the bus to a Store.
// Ticks are skipped; one per second adds nothing to the trail.
type Recorder struct {
	store *Store
	log   logging.Logger
	unsub func()
}

// Attach subscribes a recorder to bus.
func Attach(bus *events.Bus, store *Store, log logging.Logger) *Recorder {
	if log == nil {
		log = logging.Nop()
	}

	r := &Recorder{store: store, log: log.WithField("component", "audit")}
	r.unsub = bus.SubscribeAll(r.handle)
	return r
}

// Detach stops recording.
func (r *Recorder) Detach() {
	r.unsub()
}

func (r *Recorder) handle(evt events.Event) {
	if evt.Type == events.Tick {
		return
	}

	entry := Entry{At: evt.At, Event: string(evt.Type), Seconds: evt.Seconds}
	if evt.Cycle != uuid.Nil {
		entry.Cycle = evt.Cycle.String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.store.Record(ctx, entry); err != nil {
		r.log.WithError(err).WithField("event", entry.Event).Warn("audit write failed")
	}
}
