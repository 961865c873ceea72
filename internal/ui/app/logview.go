// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/jeranaias/backoffice-tui/internal/ui/components"
	"github.com/jeranaias/backoffice-tui/internal/ui/styles"
)

// LogView is the presenter view used when stdout is not a terminal.
// It writes one line per state change and closes Done after sign-out.
type LogView struct {
	mu   sync.Mutex
	w    io.Writer
	done chan struct{}
	once sync.Once
}

// NewLogView creates a LogView writing to w.
func NewLogView(w io.Writer) *LogView {
	return &LogView{w: w, done: make(chan struct{})}
}

// Done is closed once the user has been signed out.
func (v *LogView) Done() <-chan struct{} {
	return v.done
}

// Open implements presenter.View.
func (v *LogView) Open(seconds int) {
	v.printf("%s Session expires in %s\n", styles.StatusIndicators.Warning, components.FormatCountdown(seconds))
}

// Update implements presenter.View. Only every tenth second and the last
// five are written.
func (v *LogView) Update(seconds int) {
	if seconds%10 != 0 && seconds > 5 {
		return
	}
	v.printf("%s Session expires in %s\n", styles.StatusIndicators.Warning, components.FormatCountdown(seconds))
}

// Close implements presenter.View.
func (v *LogView) Close() {
	v.printf("%s Expiry warning dismissed\n", styles.StatusIndicators.Info)
}

// SignedOut implements presenter.View.
func (v *LogView) SignedOut(reason string) {
	v.printf("%s %s\n", styles.StatusIndicators.Error, reason)
	v.once.Do(func() { close(v.done) })
}

func (v *LogView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, format, args...)
}
