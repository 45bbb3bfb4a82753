package formstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rohits-web03/formstore/internal/models"
	"github.com/rohits-web03/formstore/internal/repositories"
	"github.com/rohits-web03/formstore/internal/storage"
	"go.uber.org/zap"
)

// Insert stores a new form. Only the collection address accepts inserts.
// An absent date becomes now; an explicit one, zero included, is kept.
// Missing display name, hash, cache path and media path are derived
// from the definition file before the row is written.
func (s *Store) Insert(ctx context.Context, uri string, values Values) (form *models.Form, err error) {
	route, err := Resolve(uri)
	if err != nil {
		return nil, err
	}
	if route.Kind != Collection {
		return nil, fmt.Errorf("%w: insert on %s", ErrUnsupportedOperation, route.URI())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		rows := 0
		if form != nil {
			rows = 1
		}
		s.metrics.Mutation("insert", route.Kind.String(), rows, err)
	}()

	var draft models.Form
	values.ApplyTo(&draft)
	s.relativize(&draft)
	if !values.Date.IsSet() {
		draft.Date = s.now().UnixMilli()
	}
	if err := s.checkPaths(&draft); err != nil {
		return nil, err
	}
	if err := s.fillDefaults(ctx, &draft); err != nil {
		return nil, err
	}
	if err := s.check(&draft); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, &draft)
	if err != nil {
		return nil, err
	}
	s.log.Info("form inserted", zap.Int64("id", saved.ID), zap.String("form_id", saved.FormID))
	s.notifyChanged(saved.ID)
	return saved, nil
}

// Update merges values into every row the address selects and returns how
// many rows were rewritten. On the collection, selection picks the rows;
// on a form address it is ignored.
func (s *Store) Update(ctx context.Context, uri string, values Values, selection repositories.Selection) (count int, err error) {
	route, err := Resolve(uri)
	if err != nil {
		return 0, err
	}
	if route.Kind == LatestPerFormID {
		return 0, fmt.Errorf("%w: update on %s", ErrUnsupportedOperation, route.URI())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.metrics.Mutation("update", route.Kind.String(), count, err) }()

	var rows []models.Form
	switch route.Kind {
	case Collection:
		rows, err = s.repo.Scan(ctx, repositories.FormScan{Selection: selection})
		if err != nil {
			return 0, err
		}
	case ByID:
		existing, err := s.repo.Get(ctx, route.ID)
		if err != nil {
			return 0, s.notFound(err, route.ID)
		}
		rows = []models.Form{*existing}
	}

	updated := make([]int64, 0, len(rows))
	for _, existing := range rows {
		merged := s.merge(existing, values)
		if err := s.check(&merged); err != nil {
			s.notifyPartial(updated)
			return len(updated), err
		}
		if _, err := s.repo.Save(ctx, &merged); err != nil {
			s.notifyPartial(updated)
			return len(updated), err
		}
		updated = append(updated, merged.ID)
	}

	s.log.Info("forms updated", zap.String("uri", route.URI()), zap.Int("rows", len(rows)))
	s.notifyChanged(updated...)
	return len(rows), nil
}

// Delete removes the forms the address selects through the deleter, one at
// a time, and returns the number of rows selected when the scan ran. The
// first failing cascade stops the batch; forms deleted before it stay
// deleted. Deleting a single form that does not exist is not an error.
func (s *Store) Delete(ctx context.Context, uri string, selection repositories.Selection) (count int, err error) {
	route, err := Resolve(uri)
	if err != nil {
		return 0, err
	}
	if route.Kind == LatestPerFormID {
		return 0, fmt.Errorf("%w: delete on %s", ErrUnsupportedOperation, route.URI())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.metrics.Mutation("delete", route.Kind.String(), count, err) }()

	switch route.Kind {
	case ByID:
		err := s.deleter.Delete(ctx, route.ID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			count = 1
			if s.strictDeleteCount {
				count = 0
			}
		case err != nil:
			return 0, err
		default:
			count = 1
		}
		s.log.Info("form deleted", zap.Int64("id", route.ID), zap.Int("count", count))
		s.notifyChanged(route.ID)
		return count, nil

	default:
		rows, err := s.repo.Scan(ctx, repositories.FormScan{
			Fields:    []string{models.ColumnID},
			Selection: selection,
			Sort:      models.ColumnID,
		})
		if err != nil {
			return 0, err
		}
		deleted := make([]int64, 0, len(rows))
		for _, row := range rows {
			if err := s.deleter.Delete(ctx, row.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
				s.log.Error("cascade delete failed",
					zap.Int64("id", row.ID),
					zap.Int("completed", len(deleted)),
					zap.Error(err),
				)
				s.notifyPartial(deleted)
				return len(deleted), err
			}
			deleted = append(deleted, row.ID)
		}
		s.log.Info("forms deleted", zap.Int("count", len(rows)))
		s.notifyChanged(deleted...)
		return len(rows), nil
	}
}

// merge overlays values on an existing row. Paths are compared in absolute
// form so callers may send either shape.
func (s *Store) merge(existing models.Form, values Values) models.Form {
	merged := existing.Clone()
	merged.FormFilePath = s.paths.Absolute(merged.FormFilePath)
	merged.FormMediaPath = s.paths.Absolute(merged.FormMediaPath)
	merged.JrCacheFilePath = s.paths.Absolute(merged.JrCacheFilePath)
	values.ApplyTo(&merged)
	merged.ID = existing.ID
	s.relativize(&merged)
	return merged
}

func (s *Store) relativize(f *models.Form) {
	f.FormFilePath = s.paths.Relative(f.FormFilePath)
	f.FormMediaPath = s.paths.Relative(f.FormMediaPath)
	f.JrCacheFilePath = s.paths.Relative(f.JrCacheFilePath)
}

func (s *Store) fillDefaults(ctx context.Context, f *models.Form) error {
	if f.FormFilePath == "" {
		return nil
	}
	if f.DisplayName == "" {
		f.DisplayName = storage.DisplayName(f.FormFilePath)
	}
	if f.MD5Hash == "" && s.artifacts != nil {
		hash, err := storage.ContentHash(ctx, s.artifacts, f.FormFilePath)
		if err != nil {
			return fmt.Errorf("%w: hash definition %s: %w", ErrInvalidForm, f.FormFilePath, err)
		}
		f.MD5Hash = hash
	}
	if f.JrCacheFilePath == "" && f.MD5Hash != "" {
		f.JrCacheFilePath = s.paths.CachePath(f.MD5Hash)
	}
	if f.FormMediaPath == "" {
		f.FormMediaPath = storage.MediaPath(f.FormFilePath)
	}
	return nil
}

func (s *Store) check(f *models.Form) error {
	if err := s.checkPaths(f); err != nil {
		return err
	}
	if err := s.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidForm, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return nil
}

// checkPaths rejects artifact paths that are absolute outside the storage
// root or climb out of it.
func (s *Store) checkPaths(f *models.Form) error {
	for _, p := range []struct{ field, path string }{
		{models.ColumnFormFilePath, f.FormFilePath},
		{models.ColumnFormMediaPath, f.FormMediaPath},
		{models.ColumnJrCacheFilePath, f.JrCacheFilePath},
	} {
		if !s.paths.Contains(p.path) {
			return fmt.Errorf("%w: %s %q is outside the storage root", ErrInvalidForm, p.field, p.path)
		}
	}
	return nil
}

func (s *Store) notFound(err error, id int64) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return err
}

// notifyPartial reports rows a failed batch already committed.
func (s *Store) notifyPartial(ids []int64) {
	if len(ids) > 0 {
		s.notifyChanged(ids...)
	}
}
