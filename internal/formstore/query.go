package formstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rohits-web03/formstore/internal/models"
	"github.com/rohits-web03/formstore/internal/repositories"
	"go.uber.org/zap"
)

// Query selects rows. Fields are column names (all columns when empty).
// Selection and Sort are handed to the repository as written; the by-id
// address ignores both.
type Query struct {
	Fields    []string
	Selection repositories.Selection
	Sort      string
}

// Result holds the rows of a query and stays bound to the address that
// produced them.
type Result struct {
	Forms []models.Form
	Route Route

	notifier *Notifier
}

// Watch subscribes to changes of the address the result came from.
func (r *Result) Watch(buffer int) *Subscription {
	return r.notifier.Subscribe(r.Route, buffer)
}

func (s *Store) Query(ctx context.Context, uri string, q Query) (*Result, error) {
	route, err := Resolve(uri)
	if err != nil {
		return nil, err
	}
	if err := checkFields(q.Fields); err != nil {
		return nil, err
	}
	started := time.Now()
	defer s.metrics.ObserveQuery(route.Kind.String(), started)

	var scan repositories.FormScan
	switch route.Kind {
	case Collection:
		scan = repositories.FormScan{Fields: q.Fields, Selection: q.Selection, Sort: q.Sort}
	case ByID:
		scan = repositories.FormScan{
			Fields:    q.Fields,
			Selection: repositories.Selection{Where: "id = ?", Args: []any{route.ID}},
		}
	case LatestPerFormID:
		scan = repositories.FormScan{
			Fields:          latestFields(q.Fields),
			Selection:       q.Selection,
			Sort:            q.Sort,
			LatestPerFormID: true,
			IncludeDeleted:  s.latestIncludesDeleted,
		}
	}

	forms, err := s.repo.Scan(ctx, scan)
	if err != nil {
		return nil, err
	}
	if route.Kind == ByID && len(forms) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, route.ID)
	}

	s.log.Debug("query", zap.String("uri", route.URI()), zap.Int("rows", len(forms)))
	return &Result{Forms: forms, Route: route, notifier: s.notifier}, nil
}

func checkFields(fields []string) error {
	for _, f := range fields {
		if !models.FormColumns[f] {
			return fmt.Errorf("%w: unknown column %q", ErrInvalidProjection, f)
		}
	}
	return nil
}

// latestFields makes sure a projected newest-per-form row still carries its
// identity, its logical form id and the winning date.
func latestFields(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	out := append([]string(nil), fields...)
	for _, required := range []string{models.ColumnID, models.ColumnFormID, models.ColumnDate} {
		if !slices.Contains(out, required) {
			out = append(out, required)
		}
	}
	return out
}
