package store

import (
	"strings"
	"testing"
)

func TestBuildUpdate(t *testing.T) {
	allowed := map[string]bool{"ticker": true, "status": true, "ipo_price": true}

	query, args, err := buildUpdate("ipos", "id", int64(7), allowed, map[string]any{
		"ticker": "ABC",
		"status": "trading",
	})
	if err != nil {
		t.Fatalf("buildUpdate: %v", err)
	}

	want := "UPDATE ipos SET status = $1, ticker = $2, updated_at = now() WHERE id = $3"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v, want 3 values", args)
	}
	// Columns are sorted, so status comes first.
	if args[0] != "trading" || args[1] != "ABC" || args[2] != int64(7) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildUpdateRejectsUnknownColumn(t *testing.T) {
	_, _, err := buildUpdate("ipos", "id", 1, map[string]bool{"ticker": true}, map[string]any{
		"ticker":  "ABC",
		"dropped": true,
	})
	if err == nil {
		t.Fatal("expected error for unknown column")
	}
	if !strings.Contains(err.Error(), "dropped") {
		t.Errorf("error %q does not name the bad column", err)
	}
}

func TestBuildUpdateRejectsEmptyFields(t *testing.T) {
	if _, _, err := buildUpdate("ipos", "id", 1, nil, nil); err == nil {
		t.Fatal("expected error for empty field map")
	}
}

func TestPrefixColumns(t *testing.T) {
	got := prefixColumns("id, company_name,\n\tticker", "d")
	want := "d.id, d.company_name, d.ticker"
	if got != want {
		t.Errorf("prefixColumns = %q, want %q", got, want)
	}
}

func TestListFilterNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListFilter
		want ListFilter
	}{
		{"defaults", ListFilter{}, ListFilter{Limit: 50}},
		{"clamped", ListFilter{Limit: 500, Offset: -3}, ListFilter{Limit: 100}},
		{"kept", ListFilter{Status: "trading", Limit: 10, Offset: 20}, ListFilter{Status: "trading", Limit: 10, Offset: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalize(); got != tt.want {
				t.Errorf("normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
