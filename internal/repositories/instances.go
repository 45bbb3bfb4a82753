package repositories

import (
	"context"
	"fmt"

	"github.com/rohits-web03/formstore/internal/models"
	"gorm.io/gorm"
)

type InstanceRepository struct {
	db *gorm.DB
}

func NewInstanceRepository(db *gorm.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

func (r *InstanceRepository) Save(ctx context.Context, instance *models.Instance) (*models.Instance, error) {
	if err := r.db.WithContext(ctx).Save(instance).Error; err != nil {
		return nil, fmt.Errorf("save instance: %w", err)
	}
	return instance, nil
}

func (r *InstanceRepository) Get(ctx context.Context, id int64) (*models.Instance, error) {
	var instance models.Instance
	if err := r.db.WithContext(ctx).First(&instance, id).Error; err != nil {
		return nil, notFound(err, "instance", id)
	}
	return &instance, nil
}

// FindByFormID lists instances of a form, newest status change first.
func (r *InstanceRepository) FindByFormID(ctx context.Context, formID string) ([]models.Instance, error) {
	var instances []models.Instance
	err := r.db.WithContext(ctx).
		Where("jr_form_id = ?", formID).
		Order("last_status_change_date DESC").
		Find(&instances).Error
	if err != nil {
		return nil, fmt.Errorf("find instances of %s: %w", formID, err)
	}
	return instances, nil
}

func (r *InstanceRepository) CountNotDeletedByFormIDAndVersion(ctx context.Context, formID string, version *string) (int64, error) {
	var count int64
	err := byFormVersion(r.db.WithContext(ctx).Model(&models.Instance{}), formID, version).
		Where("deleted_date IS NULL").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count instances of %s: %w", formID, err)
	}
	return count, nil
}

// DeleteSoftDeletedByFormIDAndVersion purges instance rows already marked
// deleted for one form version.
func (r *InstanceRepository) DeleteSoftDeletedByFormIDAndVersion(ctx context.Context, formID string, version *string) (int64, error) {
	result := byFormVersion(r.db.WithContext(ctx), formID, version).
		Where("deleted_date IS NOT NULL").
		Delete(&models.Instance{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge instances of %s: %w", formID, result.Error)
	}
	return result.RowsAffected, nil
}

func byFormVersion(q *gorm.DB, formID string, version *string) *gorm.DB {
	q = q.Where("jr_form_id = ?", formID)
	if version == nil {
		return q.Where("jr_version IS NULL")
	}
	return q.Where("jr_version = ?", *version)
}
