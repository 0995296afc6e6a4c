package tui

import (
	"maps"
	"slices"

	"charm.land/bubbles/v2/key"

	"github.com/skykid17/smartlp-sub005/internal/core/config"
	"github.com/skykid17/smartlp-sub005/internal/tui/components"
)

// Action represents a resolved keybinding.
type Action struct {
	Name    string
	Key     string
	Help    string
	Confirm string // Non-empty if confirmation required
}

// NeedsConfirm returns true if the action requires user confirmation.
func (a Action) NeedsConfirm() bool {
	return a.Confirm != ""
}

// KeybindingResolver resolves key presses to configured actions.
type KeybindingResolver struct {
	keybindings map[string]config.Keybinding
}

// NewKeybindingResolver creates a resolver over the merged keybindings.
func NewKeybindingResolver(keybindings map[string]config.Keybinding) *KeybindingResolver {
	return &KeybindingResolver{keybindings: keybindings}
}

// Resolve returns the action bound to key.
func (h *KeybindingResolver) Resolve(key string) (Action, bool) {
	kb, ok := h.keybindings[key]
	if !ok || kb.Action == "" {
		return Action{}, false
	}

	help := kb.Help
	if help == "" {
		help = kb.Action
	}
	return Action{
		Name:    kb.Action,
		Key:     key,
		Help:    help,
		Confirm: kb.Confirm,
	}, true
}

// KeyFor returns the first key, in sorted order, bound to action.
func (h *KeybindingResolver) KeyFor(action string) string {
	for _, k := range slices.Sorted(maps.Keys(h.keybindings)) {
		if h.keybindings[k].Action == action {
			return k
		}
	}
	return ""
}

// actionSections groups actions for the help dialog.
var actionSections = []struct {
	title   string
	actions []string
}{
	{"Selection", []string{config.ActionToggle, config.ActionClear, config.ActionDelete}},
	{"Configuration panel", []string{config.ActionPanel, config.ActionRemove}},
	{"Navigation", []string{
		config.ActionDetail, config.ActionSearch, config.ActionNextPage,
		config.ActionPrevPage, config.ActionRefresh, config.ActionSwitch,
	}},
}

// HelpSections returns all configured keybindings grouped for display,
// sorted by key within each group, plus the fixed navigation keys.
func (h *KeybindingResolver) HelpSections() []components.HelpDialogSection {
	keys := slices.Sorted(maps.Keys(h.keybindings))

	sections := make([]components.HelpDialogSection, 0, len(actionSections)+1)
	for _, group := range actionSections {
		var entries []components.HelpEntry
		for _, k := range keys {
			if a, ok := h.Resolve(k); ok && slices.Contains(group.actions, a.Name) {
				entries = append(entries, components.HelpEntry{Key: k, Desc: a.Help})
			}
		}
		if len(entries) > 0 {
			sections = append(sections, components.HelpDialogSection{Title: group.title, Entries: entries})
		}
	}

	sections = append(sections, components.HelpDialogSection{
		Title: "General",
		Entries: []components.HelpEntry{
			{Key: "↑/↓ j/k", Desc: "move cursor"},
			{Key: "←/→", Desc: "focus table / panel"},
			{Key: "click", Desc: "select row and open details"},
			{Key: "ctrl+click", Desc: "toggle row only"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	})
	return sections
}

// ShortHelp returns bindings for the footer: the most used actions first.
func (h *KeybindingResolver) ShortHelp() []key.Binding {
	order := []string{
		config.ActionToggle, config.ActionPanel, config.ActionSearch,
		config.ActionDelete, config.ActionSwitch,
	}

	bindings := make([]key.Binding, 0, len(order)+1)
	for _, action := range order {
		k := h.KeyFor(action)
		if k == "" {
			continue
		}
		a, _ := h.Resolve(k)
		bindings = append(bindings, key.NewBinding(key.WithKeys(k), key.WithHelp(k, a.Help)))
	}
	return append(bindings, key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")))
}
