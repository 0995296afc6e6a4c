package styles

// Row and panel glyphs.
var (
	IconChecked   = "[x]"
	IconUnchecked = "[ ]"
	IconCursor    = "›"
	IconRemove    = "✕"
	IconSpinner   = "◌"
)

// Toast glyphs by notification level.
var (
	IconNotifyInfo    = "●"
	IconNotifyWarning = "▲"
	IconNotifyError   = "✖"
)
