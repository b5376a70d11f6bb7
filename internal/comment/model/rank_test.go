package model

import "testing"

func TestSortByRank(t *testing.T) {
	cs := []Comment{
		{CID: "a", Ups: 3, Timestamp: "2024-01-01"},
		{CID: "b", Ups: 10, Timestamp: "2023-12-31"},
		{CID: "c", Ups: 3, Timestamp: "2024-02-01"},
		{CID: "d", Ups: 0, Timestamp: "2025-01-01"},
	}
	SortByRank(cs)

	want := []string{"b", "c", "a", "d"}
	for i, id := range want {
		if cs[i].CID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, cs[i].CID)
		}
	}
}

func TestRankedBeforeComparesTimestampAsString(t *testing.T) {
	// "9" > "10" as strings; no time parsing is involved.
	a := Comment{Ups: 1, Timestamp: "9"}
	b := Comment{Ups: 1, Timestamp: "10"}
	if !RankedBefore(a, b) {
		t.Fatalf("expected string order to rank %q before %q", a.Timestamp, b.Timestamp)
	}
}

func TestHasParent(t *testing.T) {
	empty := ""
	p := "c1"
	cases := []struct {
		name string
		c    Comment
		want bool
	}{
		{"nil", Comment{}, false},
		{"empty", Comment{ParentID: &empty}, false},
		{"set", Comment{ParentID: &p}, true},
	}
	for _, tc := range cases {
		if got := tc.c.HasParent(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
