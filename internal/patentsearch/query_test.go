package patentsearch

import (
	"context"
	"testing"
)

func TestBuildQueryString(t *testing.T) {
	cases := []struct {
		name string
		q    Query
		want string
	}{
		{
			name: "keywords and ipc",
			q: Query{
				Keywords:           []string{"neural network", "inference"},
				IPCClassifications: []string{"G06N", "G06F"},
			},
			want: "(neural network OR inference) AND (IPC:G06N OR IPC:G06F)",
		},
		{
			name: "keywords only",
			q:    Query{Keywords: []string{"battery", "anode"}},
			want: "(battery OR anode)",
		},
		{
			name: "caps keywords at five",
			q:    Query{Keywords: []string{"a", "b", "c", "d", "e", "f"}},
			want: "(a OR b OR c OR d OR e)",
		},
		{
			name: "empty falls back to generic",
			q:    Query{},
			want: "technology",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildQueryString(tc.q); got != tc.want {
				t.Errorf("BuildQueryString = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateCorpusDeterministic(t *testing.T) {
	q := Query{Keywords: []string{"solar", "inverter"}, MaxResults: 5}

	first := generateCorpus(q)
	second := generateCorpus(q)

	if len(first) != 5 {
		t.Fatalf("len = %d, want 5", len(first))
	}
	for i := range first {
		if first[i].PatentID != second[i].PatentID || first[i].Title != second[i].Title {
			t.Fatalf("corpus not deterministic at index %d", i)
		}
	}
	if first[0].PatentID != "US10000000B2" {
		t.Errorf("first patent id = %q", first[0].PatentID)
	}
}

func TestSearcherOfflineFallback(t *testing.T) {
	s := NewSearcher("", "")
	patents, err := s.Search(context.Background(), Query{Keywords: []string{"robotics"}, MaxResults: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(patents) != 3 {
		t.Fatalf("len = %d, want 3", len(patents))
	}
	for _, p := range patents {
		if p.PatentID == "" || p.Title == "" || p.PublicationDate == "" {
			t.Errorf("incomplete patent: %+v", p)
		}
	}
}
