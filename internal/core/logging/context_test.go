package logging

import (
	"context"
	"testing"
)

func TestWithTable(t *testing.T) {
	ctx := WithTable(context.Background(), "smartlp_entries-table-body")

	if got := GetTable(ctx); got != "smartlp_entries-table-body" {
		t.Errorf("GetTable() = %q, want %q", got, "smartlp_entries-table-body")
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-1")
	}
}

func TestGetters_NotPresent(t *testing.T) {
	ctx := context.Background()

	if got := GetTable(ctx); got != "" {
		t.Errorf("GetTable() = %q, want empty string", got)
	}
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("GetRequestID() = %q, want empty string", got)
	}
}
