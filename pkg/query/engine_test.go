package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/wikimirror/wikimirror/pkg/model"
	"github.com/wikimirror/wikimirror/pkg/store/sqlite"
)

func populateStore(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.New(sqlite.Config{DBPath: dbPath, WAL: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	entities := []*model.StoredEntity{
		{ID: "Q1", Kind: "item", Labels: `{"en":{"value":"Golden Gate Bridge"}}`,
			Descriptions: `{"en":{"value":"suspension bridge in California"}}`,
			Aliases:      "{}", Claims: "{}", Sitelinks: "{}"},
		{ID: "Q2", Kind: "item", Labels: `{"en":{"value":"Tower Bridge"}}`,
			Descriptions: `{"en":{"value":"bascule bridge in London"}}`,
			Aliases:      "{}", Claims: "{}", Sitelinks: "{}"},
		{ID: "P1", Kind: "property", Labels: `{"en":{"value":"bridge type"}}`,
			Descriptions: "{}", Aliases: "{}", Claims: "{}", Sitelinks: "{}"},
	}
	if err := s.BeginBatch(); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertEntities(entities); err != nil {
		t.Fatal(err)
	}
	if err := s.CommitBatch(); err != nil {
		t.Fatal(err)
	}
	return dbPath
}

func TestEngineSearch(t *testing.T) {
	engine, err := Open(populateStore(t))
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	results, err := engine.Search(context.Background(), "bridge", 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("results = %d, want 3", len(results))
	}
}

func TestEngineSearchWithFilter(t *testing.T) {
	engine, err := Open(populateStore(t))
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	results, err := engine.Search(context.Background(), "bridge", 10, `kind == "item"`)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("filtered results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Kind != "item" {
			t.Errorf("filter let through %+v", r)
		}
	}

	if _, err := engine.Search(context.Background(), "bridge", 10, `kind ==`); err == nil {
		t.Error("invalid filter expression should fail")
	}
}

func TestEngineSearchLimit(t *testing.T) {
	engine, err := Open(populateStore(t))
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	results, err := engine.Search(context.Background(), "bridge", 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("limited results = %d, want 1", len(results))
	}
}

func TestEngineGetEntity(t *testing.T) {
	engine, err := Open(populateStore(t))
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	e, err := engine.GetEntity(context.Background(), "q1")
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || e.ID != "Q1" {
		t.Errorf("GetEntity(q1) = %+v", e)
	}

	missing, err := engine.GetEntity(context.Background(), "Q404")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("Q404 = %+v, want nil", missing)
	}
}

func TestEngineOpenMissingDatabase(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("opening a missing database should fail")
	}
}
