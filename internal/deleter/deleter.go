// Package deleter removes a form together with everything that depends on it:
// its definition, compiled cache and media artifacts, its itemset caches and
// instance rows already marked deleted.
package deleter

import (
	"context"
	"fmt"
	"time"

	"github.com/rohits-web03/formstore/internal/models"
	"github.com/rohits-web03/formstore/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type FormsRepository interface {
	Get(ctx context.Context, id int64) (*models.Form, error)
	Delete(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64, at int64) error
	GetAllByFormIDAndVersion(ctx context.Context, formID string, version *string) ([]models.Form, error)
}

type InstancesRepository interface {
	CountNotDeletedByFormIDAndVersion(ctx context.Context, formID string, version *string) (int64, error)
	DeleteSoftDeletedByFormIDAndVersion(ctx context.Context, formID string, version *string) (int64, error)
}

type ItemsetsRepository interface {
	FindByCSVPath(ctx context.Context, csvPath string) ([]models.ItemsetCache, error)
	DeleteByCSVPath(ctx context.Context, csvPath string) (int64, error)
}

type Artifacts interface {
	Remove(ctx context.Context, rel string) error
}

type FormDeleter struct {
	forms     FormsRepository
	instances InstancesRepository
	itemsets  ItemsetsRepository
	artifacts Artifacts
	now       func() time.Time
	log       *zap.Logger
}

func New(forms FormsRepository, instances InstancesRepository, itemsets ItemsetsRepository, artifacts Artifacts, now func() time.Time, log *zap.Logger) *FormDeleter {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FormDeleter{
		forms:     forms,
		instances: instances,
		itemsets:  itemsets,
		artifacts: artifacts,
		now:       now,
		log:       log,
	}
}

// Delete removes form id. While unsent instances still point at the form
// version the row is only soft deleted so they stay openable, unless another
// download of the same version remains to serve them. A missing form yields
// an error wrapping repositories.ErrNotFound.
func (d *FormDeleter) Delete(ctx context.Context, id int64) error {
	form, err := d.forms.Get(ctx, id)
	if err != nil {
		return err
	}

	live, err := d.instances.CountNotDeletedByFormIDAndVersion(ctx, form.FormID, form.Version)
	if err != nil {
		return err
	}
	sameVersion, err := d.forms.GetAllByFormIDAndVersion(ctx, form.FormID, form.Version)
	if err != nil {
		return err
	}

	if live > 0 && len(sameVersion) <= 1 {
		if err := d.forms.SoftDelete(ctx, id, d.now().UnixMilli()); err != nil {
			return err
		}
		d.log.Info("form soft deleted",
			zap.Int64("id", id),
			zap.String("form_id", form.FormID),
			zap.Int64("live_instances", live),
		)
		return nil
	}

	if err := d.removeArtifacts(ctx, form, sameVersion); err != nil {
		return err
	}
	if err := d.dropItemsets(ctx, form); err != nil {
		return err
	}
	if len(sameVersion) <= 1 {
		if _, err := d.instances.DeleteSoftDeletedByFormIDAndVersion(ctx, form.FormID, form.Version); err != nil {
			return err
		}
	}
	if err := d.forms.Delete(ctx, id); err != nil {
		return err
	}

	d.log.Info("form deleted", zap.Int64("id", id), zap.String("form_id", form.FormID))
	return nil
}

// dropItemsets removes the itemset caches built from the form's
// itemsets.csv.
func (d *FormDeleter) dropItemsets(ctx context.Context, form *models.Form) error {
	csvPath := storage.ItemsetsPath(form.FormMediaPath)
	if csvPath == "" {
		return nil
	}
	caches, err := d.itemsets.FindByCSVPath(ctx, csvPath)
	if err != nil || len(caches) == 0 {
		return err
	}
	if _, err := d.itemsets.DeleteByCSVPath(ctx, csvPath); err != nil {
		return err
	}
	tables := make([]string, 0, len(caches))
	for _, c := range caches {
		tables = append(tables, c.Table)
	}
	d.log.Info("itemset caches dropped",
		zap.Int64("id", form.ID),
		zap.String("csv_path", csvPath),
		zap.Strings("tables", tables),
	)
	return nil
}

// removeArtifacts deletes the definition, cache and media directory in
// parallel. Paths another download of the same version still uses are kept.
func (d *FormDeleter) removeArtifacts(ctx context.Context, form *models.Form, sameVersion []models.Form) error {
	shared := make(map[string]bool)
	for _, other := range sameVersion {
		if other.ID == form.ID {
			continue
		}
		shared[other.FormFilePath] = true
		shared[other.JrCacheFilePath] = true
		shared[other.FormMediaPath] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, rel := range []string{form.FormFilePath, form.JrCacheFilePath, form.FormMediaPath} {
		if rel == "" || shared[rel] {
			continue
		}
		g.Go(func() error {
			if err := d.artifacts.Remove(gctx, rel); err != nil {
				return fmt.Errorf("form %d: %w", form.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
