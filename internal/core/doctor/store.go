package doctor

import (
	"context"
	"fmt"

	"github.com/skykid17/smartlp-sub005/internal/core/kv"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
)

const probeKey = "doctor:probe"

// StoreCheck verifies the selection store is writable and reports the size
// of each persisted selection.
type StoreCheck struct {
	store   kv.KV
	backend string
	prefix  string
	tables  []string
}

// NewStoreCheck creates a new selection store check.
func NewStoreCheck(store kv.KV, backend, prefix string, tables []string) *StoreCheck {
	return &StoreCheck{store: store, backend: backend, prefix: prefix, tables: tables}
}

func (c *StoreCheck) Name() string {
	return "Selection Store"
}

func (c *StoreCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if err := c.probe(ctx); err != nil {
		result.add(c.backend, StatusFail, err.Error())
		return result
	}
	result.add(c.backend, StatusPass, "read/write ok")

	for _, table := range c.tables {
		ids := selection.NewStore(c.store, c.prefix, table).Get()
		result.add(selection.StorageKey(c.prefix, table), StatusPass, fmt.Sprintf("%d selected", len(ids)))
	}

	return result
}

func (c *StoreCheck) probe(ctx context.Context) error {
	if err := c.store.Set(ctx, probeKey, true); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	var got bool
	if err := c.store.Get(ctx, probeKey, &got); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if err := c.store.Delete(ctx, probeKey); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
