package repositories

import (
	"context"
	"fmt"

	"github.com/rohits-web03/formstore/internal/models"
	"gorm.io/gorm"
)

// Selection is a raw where clause with positional arguments.
type Selection struct {
	Where string
	Args  []any
}

// FormScan describes one scan over the forms table.
type FormScan struct {
	Fields    []string
	Selection Selection
	Sort      string
	// LatestPerFormID reduces the scan to the newest row of each jr_form_id.
	// Selection and Sort apply to the reduced rows.
	LatestPerFormID bool
	// IncludeDeleted keeps soft-deleted rows in the LatestPerFormID grouping.
	IncludeDeleted bool
}

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// Scan runs a filtered, sorted and optionally grouped scan.
func (r *FormRepository) Scan(ctx context.Context, scan FormScan) ([]models.Form, error) {
	q := r.db.WithContext(ctx)
	if scan.LatestPerFormID {
		q = q.Table("(?) AS forms", r.latestPerFormID(scan.IncludeDeleted))
	} else {
		q = q.Model(&models.Form{})
	}
	if len(scan.Fields) > 0 {
		q = q.Select(scan.Fields)
	}
	if scan.Selection.Where != "" {
		q = q.Where(scan.Selection.Where, scan.Selection.Args...)
	}
	if scan.Sort != "" {
		q = q.Order(scan.Sort)
	}

	var forms []models.Form
	if err := q.Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("scan forms: %w", err)
	}
	return forms, nil
}

// latestPerFormID keeps a row when no other row of the same jr_form_id is
// newer. Equal dates are ranked by id so every group yields exactly one row.
func (r *FormRepository) latestPerFormID(includeDeleted bool) *gorm.DB {
	newer := r.db.Table("forms AS newer").Select("1").
		Where("newer.jr_form_id = forms.jr_form_id").
		Where(`(newer."date" > forms."date" OR (newer."date" = forms."date" AND newer.id > forms.id))`)
	q := r.db.Model(&models.Form{})
	if !includeDeleted {
		newer = newer.Where("newer.deleted_date IS NULL")
		q = q.Where("forms.deleted_date IS NULL")
	}
	return q.Where("NOT EXISTS (?)", newer)
}

func (r *FormRepository) Get(ctx context.Context, id int64) (*models.Form, error) {
	var form models.Form
	if err := r.db.WithContext(ctx).First(&form, id).Error; err != nil {
		return nil, notFound(err, "form", id)
	}
	return &form, nil
}

// Save inserts a form without an id and overwrites the row of a form with one.
func (r *FormRepository) Save(ctx context.Context, form *models.Form) (*models.Form, error) {
	if err := r.db.WithContext(ctx).Save(form).Error; err != nil {
		return nil, fmt.Errorf("save form: %w", err)
	}
	return form, nil
}

func (r *FormRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Form{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete form %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("form %d: %w", id, ErrNotFound)
	}
	return nil
}

// SoftDelete stamps deleted_date and keeps the row.
func (r *FormRepository) SoftDelete(ctx context.Context, id int64, at int64) error {
	result := r.db.WithContext(ctx).Model(&models.Form{}).Where("id = ?", id).Update("deleted_date", at)
	if result.Error != nil {
		return fmt.Errorf("soft delete form %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("form %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetAllByFormIDAndVersion returns every download of one form version. A nil
// version matches rows without a version.
func (r *FormRepository) GetAllByFormIDAndVersion(ctx context.Context, formID string, version *string) ([]models.Form, error) {
	q := r.db.WithContext(ctx).Where("jr_form_id = ?", formID)
	if version == nil {
		q = q.Where("jr_version IS NULL")
	} else {
		q = q.Where("jr_version = ?", *version)
	}
	var forms []models.Form
	if err := q.Order("id").Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("find forms %s: %w", formID, err)
	}
	return forms, nil
}
