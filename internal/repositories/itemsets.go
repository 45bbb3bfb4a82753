package repositories

import (
	"context"
	"fmt"

	"github.com/rohits-web03/formstore/internal/models"
	"gorm.io/gorm"
)

type ItemsetRepository struct {
	db *gorm.DB
}

func NewItemsetRepository(db *gorm.DB) *ItemsetRepository {
	return &ItemsetRepository{db: db}
}

func (r *ItemsetRepository) Save(ctx context.Context, itemset *models.ItemsetCache) (*models.ItemsetCache, error) {
	if err := r.db.WithContext(ctx).Save(itemset).Error; err != nil {
		return nil, fmt.Errorf("save itemset cache: %w", err)
	}
	return itemset, nil
}

func (r *ItemsetRepository) FindByCSVPath(ctx context.Context, csvPath string) ([]models.ItemsetCache, error) {
	var itemsets []models.ItemsetCache
	if err := r.db.WithContext(ctx).Where("csv_path = ?", csvPath).Find(&itemsets).Error; err != nil {
		return nil, fmt.Errorf("find itemset caches for %s: %w", csvPath, err)
	}
	return itemsets, nil
}

func (r *ItemsetRepository) DeleteByCSVPath(ctx context.Context, csvPath string) (int64, error) {
	result := r.db.WithContext(ctx).Where("csv_path = ?", csvPath).Delete(&models.ItemsetCache{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete itemset caches for %s: %w", csvPath, result.Error)
	}
	return result.RowsAffected, nil
}
