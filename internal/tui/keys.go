package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/sweeney/egg-timer/internal/logic"
)

type keyMap struct {
	Start key.Binding
	Stop  key.Binding
	Reset key.Binding
	More  key.Binding
	Less  key.Binding
	Quit  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start: key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s/space", "start")),
		Stop:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "stop")),
		Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		More:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "longer")),
		Less:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "shorter")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// enable greys out the buttons the current state does not allow.
func (k *keyMap) enable(c logic.Controls) {
	k.Start.SetEnabled(c.Start)
	k.Stop.SetEnabled(c.Stop)
	k.Reset.SetEnabled(c.Reset)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Reset, k.More, k.Less, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Start, k.Stop, k.Reset}, {k.More, k.Less, k.Quit}}
}
