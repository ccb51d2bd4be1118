package testsupport

import (
	"context"
	"testing"
	"time"

	"atelier/internal/config"
	"atelier/internal/logging"
	"atelier/internal/store"
	"atelier/internal/templates"
	"atelier/internal/workflow"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustTemplates loads the template provider for the config.
func MustTemplates(t testing.TB, cfg *config.Config) *templates.Provider {
	t.Helper()

	provider, err := templates.NewProvider(cfg.Workshop.TemplatesPath)
	if err != nil {
		t.Fatalf("templates.NewProvider: %v", err)
	}
	return provider
}

// NewController wires a workflow controller against a real store and the
// configured templates, logging discarded.
func NewController(t testing.TB, st *store.Store, provider *templates.Provider) *workflow.Controller {
	t.Helper()
	return workflow.NewController(st, st, provider, logging.NewNop())
}

// NewItem creates a garment item for tests using the provided store.
func NewItem(t testing.TB, st *store.Store, garmentType string) *workflow.Item {
	t.Helper()

	item, err := st.NewItem(context.Background(), "ORD-1", garmentType, 1, time.Now().Add(72*time.Hour))
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}
