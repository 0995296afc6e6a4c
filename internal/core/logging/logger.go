package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a logger tagged with a component name under "cmp".
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// ForTable creates a component logger bound to one selection's storage key.
// The key is logged under "table", the same field ContextHook fills from a
// context.
func ForTable(name, storageKey string) zerolog.Logger {
	return log.With().Str("cmp", name).Str("table", storageKey).Logger()
}
