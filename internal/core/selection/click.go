package selection

import "github.com/skykid17/smartlp-sub005/internal/core/record"

// Target identifies what part of a row received a click.
type Target int

const (
	// TargetRow is any non-interactive part of the row.
	TargetRow Target = iota
	// TargetCheckbox is the row's checkbox; its change event owns the toggle.
	TargetCheckbox
	// TargetInteractive is an in-row action such as a button or link.
	TargetInteractive
)

// Click is a pointer event on a table row.
type Click struct {
	ID       record.ID
	Target   Target
	Modifier bool
}

// Outcome reports what a handled event did.
type Outcome struct {
	Toggled  bool
	Selected bool
	Opened   bool
}

// ClickController turns table events into Selection calls. One controller
// serves the whole table body; rows are replaced on every render and never
// carry handlers of their own.
type ClickController struct {
	sel        *Selection
	openDetail func(record.ID)
}

// NewClickController creates a controller for sel. openDetail is called when
// a plain click selects a row; it may be nil.
func NewClickController(sel *Selection, openDetail func(record.ID)) *ClickController {
	return &ClickController{sel: sel, openDetail: openDetail}
}

// HandleClick applies a row click. A plain click on an unselected row selects
// it and opens the detail view, a modifier click only toggles, and a click on
// a selected row deselects it.
func (c *ClickController) HandleClick(click Click) Outcome {
	if click.ID == "" {
		return Outcome{}
	}

	switch click.Target {
	case TargetCheckbox, TargetInteractive:
		return Outcome{}
	}

	wasSelected := c.sel.Contains(click.ID)
	c.sel.ToggleRowSelection(nil, click.ID)

	out := Outcome{Toggled: true, Selected: !wasSelected}
	if out.Selected && !click.Modifier && c.openDetail != nil {
		c.openDetail(click.ID)
		out.Opened = true
	}
	return out
}

// HandleChange applies a checkbox change: membership follows checked. It
// never opens the detail view.
func (c *ClickController) HandleChange(id record.ID, checked bool) Outcome {
	if id == "" {
		return Outcome{}
	}

	if c.sel.Contains(id) == checked {
		c.sel.UpdateMainTableSelection()
		return Outcome{Selected: checked}
	}

	c.sel.ToggleRowSelection(nil, id)
	return Outcome{Toggled: true, Selected: checked}
}
