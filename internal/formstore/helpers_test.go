package formstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohits-web03/formstore/internal/deleter"
	"github.com/rohits-web03/formstore/internal/metrics"
	"github.com/rohits-web03/formstore/internal/repositories"
	"github.com/rohits-web03/formstore/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type harness struct {
	store     *Store
	forms     *repositories.FormRepository
	instances *repositories.InstanceRepository
	paths     *storage.Paths
}

type harnessOption func(*Options)

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	db, err := repositories.ConnectDatabase("sqlite", filepath.Join(t.TempDir(), "forms.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	paths, err := storage.NewPaths(t.TempDir(), "forms", ".cache")
	require.NoError(t, err)
	artifacts := storage.NewLocalArtifacts(paths)
	forms := repositories.NewFormRepository(db)
	instances := repositories.NewInstanceRepository(db)
	logger := zaptest.NewLogger(t)
	clock := func() time.Time { return testNow }

	o := Options{
		Repository: forms,
		Deleter: deleter.New(forms, instances, repositories.NewItemsetRepository(db),
			artifacts, clock, logger),
		Paths:     paths,
		Artifacts: artifacts,
		Clock:     clock,
		Logger:    logger,
		Metrics:   metrics.New(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	store, err := New(o)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return &harness{store: store, forms: forms, instances: instances, paths: paths}
}

// writeDefinition creates a definition with its media directory and returns
// the definition's absolute path.
func (h *harness) writeDefinition(t *testing.T, name, body string) string {
	t.Helper()
	abs := h.paths.Absolute("forms/" + name + ".xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(body), 0o644))
	media := h.paths.Absolute("forms/" + name + "-media")
	require.NoError(t, os.MkdirAll(media, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(media, "logo.png"), []byte("png"), 0o644))
	return abs
}

func (h *harness) insert(t *testing.T, name, formID, version string, date int64) int64 {
	t.Helper()
	abs := h.writeDefinition(t, name, "<h:html>"+name+"</h:html>")
	form, err := h.store.Insert(context.Background(), CollectionPath, Values{
		FormID:       Set(formID),
		Version:      Set(&version),
		Date:         Set(date),
		FormFilePath: Set(abs),
	})
	require.NoError(t, err)
	return form.ID
}

func (h *harness) exists(rel string) bool {
	_, err := os.Stat(h.paths.Absolute(rel))
	return err == nil
}

func strPtr(s string) *string { return &s }

// drain counts the changes already queued on a subscription.
func drain(sub *Subscription) int {
	n := 0
	for {
		select {
		case <-sub.C:
			n++
		default:
			return n
		}
	}
}
