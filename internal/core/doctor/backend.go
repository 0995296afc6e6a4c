package doctor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// Backend is the part of the API client the backend check probes.
type Backend interface {
	BaseURL() string
	QueryEntries(ctx context.Context, q record.Query) (record.Page[record.LogEntry], error)
	QueryRules(ctx context.Context, q record.Query) (record.Page[record.Rule], error)
}

// BackendCheck verifies the backend answers the table queries.
type BackendCheck struct {
	backend Backend
}

// NewBackendCheck creates a new backend check.
func NewBackendCheck(backend Backend) *BackendCheck {
	return &BackendCheck{backend: backend}
}

func (c *BackendCheck) Name() string {
	return "Backend"
}

func (c *BackendCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	q := record.Query{Page: 1, PageSize: 1}

	start := time.Now()
	entries, err := c.backend.QueryEntries(ctx, q)
	if err != nil {
		result.add("entries", StatusFail, describe(c.backend.BaseURL(), err))
		return result
	}
	result.add("entries", StatusPass, fmt.Sprintf("%d records (%s)", entries.Total, time.Since(start).Round(time.Millisecond)))

	start = time.Now()
	rules, err := c.backend.QueryRules(ctx, q)
	if err != nil {
		result.add("rules", StatusFail, describe(c.backend.BaseURL(), err))
		return result
	}
	result.add("rules", StatusPass, fmt.Sprintf("%d records (%s)", rules.Total, time.Since(start).Round(time.Millisecond)))

	return result
}

func describe(baseURL string, err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return fmt.Sprintf("%s unreachable: %v", baseURL, err)
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "unauthorized, check api.token"
	default:
		return apiErr.Error()
	}
}
