package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/skykid17/smartlp-sub005/internal/store/jsonfile"
)

// listenForSyncRequest waits for the panel sync scheduler to fire. Re-issue
// it after every syncRequestMsg.
func listenForSyncRequest(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return syncRequestMsg{}
	}
}

// listenForSelectionFile waits for the next change of the selection file.
func listenForSelectionFile(events <-chan jsonfile.ChangeEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return selectionFileChangedMsg{path: ev.Path}
	}
}
