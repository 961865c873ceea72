// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender delivers messages into a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramView turns presenter calls into program messages. It is created
// before the program so the presenter can be wired first; messages sent
// before Attach are dropped.
//
// Send blocks until the program's update loop takes the message, so the
// model must never call back into the presenter from Update or View.
type ProgramView struct {
	mu     sync.RWMutex
	sender Sender
}

// NewProgramView creates an unattached view.
func NewProgramView() *ProgramView {
	return &ProgramView{}
}

// Attach connects the view to a program.
func (v *ProgramView) Attach(s Sender) {
	v.mu.Lock()
	v.sender = s
	v.mu.Unlock()
}

// Send forwards msg to the attached program.
func (v *ProgramView) Send(msg tea.Msg) {
	v.mu.RLock()
	s := v.sender
	v.mu.RUnlock()

	if s != nil {
		s.Send(msg)
	}
}

// Open implements presenter.View.
func (v *ProgramView) Open(seconds int) { v.Send(WarningMsg{Seconds: seconds}) }

// Update implements presenter.View.
func (v *ProgramView) Update(seconds int) { v.Send(TickMsg{Seconds: seconds}) }

// Close implements presenter.View.
func (v *ProgramView) Close() { v.Send(DialogClosedMsg{}) }

// SignedOut implements presenter.View.
func (v *ProgramView) SignedOut(reason string) { v.Send(SignedOutMsg{Reason: reason}) }
