package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// QueryEntries fetches one page of log entries.
func (c *Client) QueryEntries(ctx context.Context, q record.Query) (record.Page[record.LogEntry], error) {
	var page record.Page[record.LogEntry]
	err := c.do(ctx, http.MethodGet, "/api/entries", queryValues(q), nil, &page)
	return page, err
}

// QueryRules fetches one page of rules.
func (c *Client) QueryRules(ctx context.Context, q record.Query) (record.Page[record.Rule], error) {
	var page record.Page[record.Rule]
	err := c.do(ctx, http.MethodGet, "/api/rules", queryValues(q), nil, &page)
	return page, err
}

type configRequest struct {
	IDs []record.ID `json:"ids"`
}

type configResponse struct {
	Results []record.ConfigRow `json:"results"`
}

// FetchConfig loads the configuration rows of ids in one call.
func (c *Client) FetchConfig(ctx context.Context, ids []record.ID) ([]record.ConfigRow, error) {
	var resp configResponse
	if err := c.do(ctx, http.MethodPost, "/api/entries/config", nil, configRequest{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// DeleteEntry removes one log entry.
func (c *Client) DeleteEntry(ctx context.Context, id record.ID) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+url.PathEscape(id.String()), nil, nil, nil)
}

// DeleteRule removes one rule.
func (c *Client) DeleteRule(ctx context.Context, id record.ID) error {
	return c.do(ctx, http.MethodDelete, "/api/rule/"+url.PathEscape(id.String()), nil, nil, nil)
}

type findMatchRequest struct {
	Text  string `json:"text"`
	Regex string `json:"regex"`
}

type findMatchResponse struct {
	Matches record.Spans `json:"matches"`
}

// FindMatch asks the backend to run regex over text and returns the
// resulting spans: the overall match and its named groups.
func (c *Client) FindMatch(ctx context.Context, text, regex string) ([]record.MatchSpan, error) {
	var resp findMatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/find_match", nil, findMatchRequest{Text: text, Regex: regex}, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}
