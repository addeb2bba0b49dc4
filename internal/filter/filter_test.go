package filter

import (
	"reflect"
	"testing"

	"svcboard/internal/model"
)

func items() []model.Item {
	return []model.Item{
		{ID: "redis-6379", DisplayName: "Redis Cache", Type: model.TypeRedis},
		{ID: "pg1", DisplayName: "Postgres", Type: model.TypePostgreSQL},
		{ID: "mongod", DisplayName: "Document Store", Type: model.TypeMongoDB},
		{ID: "pg2", DisplayName: "Reporting DB", Type: model.TypePostgreSQL},
	}
}

func ids(list []model.Item) []string {
	out := make([]string, 0, len(list))
	for _, it := range list {
		out = append(out, it.ID)
	}
	return out
}

func TestApplyIdentity(t *testing.T) {
	in := items()
	got := Apply(in, Query{Search: "", Selector: All})
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("expected identity, got %v", ids(got))
	}
	if got := Apply(in, Query{Search: "   "}); len(got) != len(in) {
		t.Fatalf("whitespace search should not filter, got %v", ids(got))
	}
}

func TestApplySearch(t *testing.T) {
	got := Apply([]model.Item{
		{ID: "a", DisplayName: "Redis Cache"},
		{ID: "b", DisplayName: "Postgres"},
	}, Query{Search: "redis"})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only the redis item, got %v", ids(got))
	}
}

func TestApplyMatchesEachField(t *testing.T) {
	cases := map[string][]string{
		"CACHE":      {"redis-6379"},
		"6379":       {"redis-6379"},
		"postgresql": {"pg1", "pg2"},
		"mongodb":    {"mongod"},
		"nothing":    {},
	}
	for term, want := range cases {
		got := ids(Apply(items(), Query{Search: term}))
		if len(got) != len(want) {
			t.Fatalf("%q: expected %v, got %v", term, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%q: expected %v, got %v", term, want, got)
			}
		}
	}
}

func TestApplySelector(t *testing.T) {
	got := ids(Apply(items(), Query{Selector: string(model.TypePostgreSQL)}))
	if !reflect.DeepEqual(got, []string{"pg1", "pg2"}) {
		t.Fatalf("type selector: got %v", got)
	}
	got = ids(Apply(items(), Query{Selector: string(model.CategoryNoSQL)}))
	if !reflect.DeepEqual(got, []string{"mongod"}) {
		t.Fatalf("category selector: got %v", got)
	}
	got = ids(Apply(items(), Query{Search: "r", Selector: string(model.CategorySQL)}))
	if !reflect.DeepEqual(got, []string{"pg1", "pg2"}) {
		t.Fatalf("combined: got %v", got)
	}
}

func TestApplyIsPure(t *testing.T) {
	in := items()
	q := Query{Search: "p", Selector: string(model.TypePostgreSQL)}
	first := Apply(in, q)
	second := Apply(in, q)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same inputs produced different results")
	}
	if !reflect.DeepEqual(in, items()) {
		t.Fatal("input mutated")
	}
}

func TestCounts(t *testing.T) {
	counts := Counts(items(), "")
	if counts[All] != 4 || counts[string(model.TypePostgreSQL)] != 2 || counts[string(model.CategorySQL)] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if got := Counts(items(), "redis")[All]; got != 1 {
		t.Fatalf("search should narrow counts, got %d", got)
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{"", All, "redis", "sql_databases"} {
		if !Valid(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	if Valid("bogus") {
		t.Fatal("bogus selector accepted")
	}
}
