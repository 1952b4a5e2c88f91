package pagination

import (
	"net/http/httptest"
	"testing"
)

// TestParseParams tests query parsing and clamping
func TestParseParams(t *testing.T) {
	testCases := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: DefaultLimit}},
		{"?page=3&limit=10", Params{Page: 3, Limit: 10}},
		{"?page=0&limit=-5", Params{Page: 1, Limit: DefaultLimit}},
		{"?page=abc&limit=9999", Params{Page: 1, Limit: MaxLimit}},
	}

	for _, tc := range testCases {
		req := httptest.NewRequest("GET", "/reception/queue"+tc.query, nil)
		if got := ParseParams(req); got != tc.want {
			t.Errorf("ParseParams(%q): expected %+v, got %+v", tc.query, tc.want, got)
		}
	}
}

// TestWindow tests slice bounds for each page
func TestWindow(t *testing.T) {
	testCases := []struct {
		params     Params
		total      int
		start, end int
	}{
		{Params{Page: 1, Limit: 2}, 5, 0, 2},
		{Params{Page: 3, Limit: 2}, 5, 4, 5},
		{Params{Page: 4, Limit: 2}, 5, 5, 5},
		{Params{Page: 1, Limit: 10}, 0, 0, 0},
	}

	for _, tc := range testCases {
		start, end := tc.params.Window(tc.total)
		if start != tc.start || end != tc.end {
			t.Errorf("%+v over %d: expected [%d,%d), got [%d,%d)", tc.params, tc.total, tc.start, tc.end, start, end)
		}
	}
}

// TestCalculateMeta tests page metadata
func TestCalculateMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 2}
	meta := p.CalculateMeta(5)

	if meta.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", meta.TotalPages)
	}
	if !meta.HasNext || !meta.HasPrevious {
		t.Errorf("Expected both neighbours on page 2 of 3, got %+v", meta)
	}

	empty := Params{Page: 1, Limit: 20}
	if m := empty.CalculateMeta(0); m.TotalPages != 1 || m.HasNext {
		t.Errorf("Expected a single empty page, got %+v", m)
	}
}
