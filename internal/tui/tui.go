// Package tui implements the interactive terminal front-end.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run shows the TUI until the user quits. The supervisor must already be
// running; the caller shuts it down afterwards. Settings received on updates
// replace the display settings.
func Run(c *client.Client, sup *supervisor.Supervisor, settings *models.Settings, updates <-chan *models.Settings) error {
	ref := &programRef{}
	c.OnEvent(func(ev client.Event) { ref.Send(clientEventMsg{ev: ev}) })
	sup.OnNotice(func(n supervisor.Notice) { ref.Send(noticeMsg{notice: n}) })

	model := NewModel(c, sup, settings)
	model.state = sup.State()
	p := tea.NewProgram(model, tea.WithAltScreen())
	ref.Set(p)
	defer ref.Clear()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case s := <-updates:
				ref.Send(settingsMsg{settings: s})
			}
		}
	}()

	_, err := p.Run()
	return err
}
