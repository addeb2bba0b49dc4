package catalog

import (
	"testing"

	"svcboard/internal/model"
)

func TestClassifyIsTotal(t *testing.T) {
	for _, typ := range model.AllTypes {
		got := Classify(model.Item{ID: "x", Type: typ})
		if !got.Known() {
			t.Fatalf("type %q classified to unknown %q", typ, got)
		}
	}
	for _, item := range []model.Item{
		{},
		{ID: "weird", Type: "not-a-type"},
		{ID: "\x00", DisplayName: "???"},
	} {
		if got := Classify(item); got != model.TypeOther {
			t.Fatalf("%+v: expected fallback, got %q", item, got)
		}
	}
}

func TestClassifyDetectsFromName(t *testing.T) {
	cases := map[string]model.ServiceType{
		"postgresql@14-main": model.TypePostgreSQL,
		"MSSQL$SQLEXPRESS":   model.TypeMSSQL,
		"SQLAgent$DEV":       model.TypeMSSQL,
		"mongod":             model.TypeMongoDB,
		"redis-server":       model.TypeRedis,
		"mariadb":            model.TypeMariaDB,
		"elasticsearch":      model.TypeElasticsearch,
		"influxd":            model.TypeInfluxDB,
		"rabbitmq-server":    model.TypeRabbitMQ,
	}
	for id, want := range cases {
		if got := Classify(model.Item{ID: id}); got != want {
			t.Fatalf("%s: expected %q, got %q", id, want, got)
		}
	}
	if got := Classify(model.Item{ID: "svc-42", DisplayName: "Redis Cache"}); got != model.TypeRedis {
		t.Fatalf("display name detection: got %q", got)
	}
}

func sampleItems() []model.Item {
	return []model.Item{
		{ID: "redis", DisplayName: "Redis", Type: model.TypeRedis, Status: model.StatusRunning},
		{ID: "pg2", DisplayName: "postgres replica", Type: model.TypePostgreSQL, Status: model.StatusStopped},
		{ID: "pg1", DisplayName: "Postgres main", Type: model.TypePostgreSQL, Status: model.StatusRunning},
		{ID: "mysql", DisplayName: "MySQL", Type: model.TypeMySQL, Status: model.StatusStarting},
	}
}

func TestPartitionOrderingAndSummary(t *testing.T) {
	groups := Partition(sampleItems(), ByType, nil)
	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	want := []string{"MySQL", "PostgreSQL", "Redis"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}

	pg := groups[1]
	if pg.Items[0].ID != "pg1" || pg.Items[1].ID != "pg2" {
		t.Fatalf("members not sorted by display name: %+v", pg.Items)
	}
	if pg.Summary.Running != 1 || pg.Summary.Stopped != 1 {
		t.Fatalf("unexpected summary %+v", pg.Summary)
	}
	if groups[0].Summary != (Summary{}) {
		t.Fatalf("transitional statuses must not count: %+v", groups[0].Summary)
	}
	for _, g := range groups {
		if !g.Expanded {
			t.Fatalf("group %s should default to expanded", g.Key)
		}
	}
}

func TestPartitionOmitsEmpty(t *testing.T) {
	if groups := Partition(nil, ByType, nil); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}

func TestPartitionByCategory(t *testing.T) {
	groups := Partition(sampleItems(), ByCategory, Expansion{string(model.CategorySQL): false})
	if len(groups) != 2 {
		t.Fatalf("expected 2 category groups, got %d", len(groups))
	}
	if groups[0].Key != string(model.CategoryCache) || groups[1].Key != string(model.CategorySQL) {
		t.Fatalf("unexpected order: %s, %s", groups[0].Key, groups[1].Key)
	}
	if groups[1].Expanded {
		t.Fatal("sql group should be collapsed")
	}
	if len(groups[1].Items) != 3 {
		t.Fatalf("expected 3 sql items, got %d", len(groups[1].Items))
	}
}

func TestExpansionToggle(t *testing.T) {
	e := Expansion{}
	if e.Toggle("redis") {
		t.Fatal("first toggle should collapse")
	}
	if !e.Toggle("redis") {
		t.Fatal("second toggle should expand")
	}
}

func TestHeaderAction(t *testing.T) {
	g := Group{Items: []model.Item{
		{ID: "a", Status: model.StatusRunning},
		{ID: "b", Status: model.StatusStopped},
	}}
	if got := g.HeaderAction(nil); got != model.ActionStop {
		t.Fatalf("tie with running members should stop, got %s", got)
	}
	skipA := func(it model.Item) bool { return it.ID == "a" }
	if got := g.HeaderAction(skipA); got != model.ActionStart {
		t.Fatalf("excluded running member should not count, got %s", got)
	}
	if got := (Group{}).HeaderAction(nil); got != model.ActionStart {
		t.Fatalf("empty group should start, got %s", got)
	}
}
