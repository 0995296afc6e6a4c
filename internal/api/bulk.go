package api

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// Kind selects which record type a bulk operation targets.
type Kind string

const (
	KindEntries Kind = "entries"
	KindRules   Kind = "rules"
)

// BulkResult reports the per-ID outcome of DeleteMany.
type BulkResult struct {
	Deleted []record.ID
	Failed  map[record.ID]error
}

// DeleteMany deletes ids one request at a time, paced by limiter. There is
// no batch endpoint. A canceled context fails every remaining ID without
// sending it.
func (c *Client) DeleteMany(ctx context.Context, kind Kind, ids []record.ID, limiter *rate.Limiter) BulkResult {
	res := BulkResult{Failed: map[record.ID]error{}}

	del := c.DeleteEntry
	if kind == KindRules {
		del = c.DeleteRule
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			for _, rest := range ids[i:] {
				res.Failed[rest] = err
			}
			break
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				res.Failed[id] = fmt.Errorf("wait for rate limiter: %w", err)
				continue
			}
		}

		if err := del(ctx, id); err != nil {
			c.log.Warn().Err(err).Str("kind", string(kind)).Str("id", id.String()).Msg("delete failed")
			res.Failed[id] = err
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}

	return res
}
