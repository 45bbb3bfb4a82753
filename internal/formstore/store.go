// Package formstore is the forms metadata store: an address-routed query and
// mutation interface over form rows that keeps them consistent with their
// artifacts and dependents and tells observers about every change.
//
// Three addresses exist: the collection (/forms), one form (/forms/<id>) and
// the newest download of every logical form (/newest_forms_by_formid).
// Queries run concurrently. Insert, update and delete hold one store-wide
// lock for their whole duration, including the cascade of a delete, so a
// read-merge-write never races another writer.
package formstore

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rohits-web03/formstore/internal/metrics"
	"github.com/rohits-web03/formstore/internal/models"
	"github.com/rohits-web03/formstore/internal/repositories"
	"go.uber.org/zap"
)

// Repository persists form rows.
type Repository interface {
	Scan(ctx context.Context, scan repositories.FormScan) ([]models.Form, error)
	Get(ctx context.Context, id int64) (*models.Form, error)
	Save(ctx context.Context, form *models.Form) (*models.Form, error)
}

// Deleter removes one form and everything depending on it. It either
// completes or returns an error; a missing form is reported by wrapping
// repositories.ErrNotFound.
type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

// PathResolver converts between storage-relative and absolute paths.
// Contains reports whether a relative path stays below the storage root.
type PathResolver interface {
	Relative(path string) string
	Absolute(rel string) string
	Contains(rel string) bool
	CachePath(md5Hash string) string
}

// Artifacts reads form definitions to derive their content hash.
type Artifacts interface {
	Open(ctx context.Context, rel string) (io.ReadCloser, error)
}

type Options struct {
	Repository Repository
	Deleter    Deleter
	Paths      PathResolver
	// Artifacts is optional; without it inserts must carry md5Hash.
	Artifacts Artifacts
	Clock     func() time.Time
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	// StrictDeleteCount makes delete-by-id report 0 for a form that did not
	// exist instead of 1.
	StrictDeleteCount bool
	// LatestIncludesDeleted keeps soft-deleted rows when picking the newest
	// download of each form.
	LatestIncludesDeleted bool
}

type Store struct {
	mu sync.Mutex

	repo      Repository
	deleter   Deleter
	paths     PathResolver
	artifacts Artifacts
	validate  *validator.Validate
	now       func() time.Time
	log       *zap.Logger
	metrics   *metrics.Metrics
	notifier  *Notifier

	strictDeleteCount     bool
	latestIncludesDeleted bool
}

func New(opts Options) (*Store, error) {
	switch {
	case opts.Repository == nil:
		return nil, errors.New("formstore: repository is required")
	case opts.Deleter == nil:
		return nil, errors.New("formstore: deleter is required")
	case opts.Paths == nil:
		return nil, errors.New("formstore: path resolver is required")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Store{
		repo:                  opts.Repository,
		deleter:               opts.Deleter,
		paths:                 opts.Paths,
		artifacts:             opts.Artifacts,
		validate:              validator.New(),
		now:                   opts.Clock,
		log:                   opts.Logger.Named("formstore"),
		metrics:               opts.Metrics,
		notifier:              NewNotifier(opts.Clock, opts.Metrics),
		strictDeleteCount:     opts.StrictDeleteCount,
		latestIncludesDeleted: opts.LatestIncludesDeleted,
	}, nil
}

// Subscribe registers an observer on an address.
func (s *Store) Subscribe(uri string, buffer int) (*Subscription, error) {
	route, err := Resolve(uri)
	if err != nil {
		return nil, err
	}
	return s.notifier.Subscribe(route, buffer), nil
}

func (s *Store) Notifier() *Notifier { return s.notifier }

// Close ends all subscriptions. The repository is owned by the caller.
func (s *Store) Close() {
	s.notifier.Close()
}

// notifyChanged publishes one change on the collection, the newest-per-form
// view and every touched form. Called after the writes committed.
func (s *Store) notifyChanged(ids ...int64) {
	s.notifier.Notify(CollectionRoute())
	s.notifier.Notify(LatestRoute())
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		s.notifier.Notify(FormRoute(id))
	}
}
