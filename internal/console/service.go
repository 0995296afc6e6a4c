package console

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/core/config"
	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/kv"
	"github.com/skykid17/smartlp-sub005/internal/core/logging"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
)

// Table body identifiers. Each one owns a selection namespace.
const (
	TableEntries = "entries"
	TableRules   = "rules"
)

// Tables lists the known table body identifiers.
var Tables = []string{TableEntries, TableRules}

// Buttons shown under a table.
const (
	ButtonDelete = "delete"
	ButtonClear  = "clear"
	ButtonPanel  = "panel"
)

// Service creates selections and runs bulk operations on them.
type Service struct {
	cfg    *config.Config
	client *api.Client
	store  kv.KV
	bus    *eventbus.EventBus
	log    zerolog.Logger
}

// NewService creates a Service. bus may be nil.
func NewService(cfg *config.Config, client *api.Client, store kv.KV, bus *eventbus.EventBus) *Service {
	return &Service{
		cfg:    cfg,
		client: client,
		store:  store,
		bus:    bus,
		log:    logging.Component("console"),
	}
}

// Kind maps a table body identifier to the API record kind.
func Kind(table string) (api.Kind, error) {
	switch table {
	case TableEntries:
		return api.KindEntries, nil
	case TableRules:
		return api.KindRules, nil
	default:
		return "", fmt.Errorf("unknown table %q (expected one of %v)", table, Tables)
	}
}

// Selection creates the selection for table. Only the entries table carries
// the panel toggle.
func (s *Service) Selection(table string) (*selection.Selection, error) {
	if _, err := Kind(table); err != nil {
		return nil, err
	}

	opts := selection.Options{
		Noun:         table,
		Buttons:      []string{ButtonDelete, ButtonClear},
		EmptyMessage: "No " + table + " found",
	}
	if table == TableEntries {
		opts.AlwaysEnabled = []string{ButtonPanel}
		opts.ColumnCount = len(s.cfg.TUI.Columns.Entries) + 1
	} else {
		opts.ColumnCount = len(s.cfg.TUI.Columns.Rules) + 1
	}

	store := selection.NewStore(s.store, s.cfg.Selection.Prefix, table)
	return selection.New(store, s.bus, opts), nil
}

// Limiter returns a limiter paced by the delete configuration.
func (s *Service) Limiter() *rate.Limiter {
	limit := rate.Limit(s.cfg.Delete.RateLimit)
	if s.cfg.Delete.RateLimit <= 0 {
		limit = rate.Inf
	}
	return rate.NewLimiter(limit, max(s.cfg.Delete.Burst, 1))
}

// DeleteSelected deletes every selected record of table, one request per ID.
// Deleted IDs leave the selection; failed ones stay selected. A
// records.deleted event reports the outcome.
func (s *Service) DeleteSelected(ctx context.Context, table string, sel *selection.Selection) (api.BulkResult, error) {
	kind, err := Kind(table)
	if err != nil {
		return api.BulkResult{}, err
	}

	ids := sel.IDs()
	if len(ids) == 0 {
		return api.BulkResult{Failed: map[record.ID]error{}}, nil
	}

	ctx = logging.WithTable(ctx, table)
	s.log.Info().Ctx(ctx).Int("count", len(ids)).Msg("bulk delete")

	res := s.client.DeleteMany(ctx, kind, ids, s.Limiter())
	if len(res.Deleted) > 0 {
		sel.RemoveIDs(res.Deleted...)
	}

	s.bus.PublishRecordsDeleted(eventbus.RecordsDeletedPayload{
		StorageKey: sel.StorageKey(),
		Deleted:    slices.Clone(res.Deleted),
		Failed:     len(res.Failed),
	})

	if len(res.Deleted) == 0 && len(res.Failed) > 0 {
		return res, fmt.Errorf("delete %d %s: all requests failed", len(ids), table)
	}
	return res, nil
}
