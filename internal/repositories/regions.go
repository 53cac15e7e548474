package repositories

import (
	"context"
	"errors"
	"github.com/maxaizer/hh-ingest/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Regions struct {
	db *gorm.DB
}

func NewRegionsRepository(db *gorm.DB) *Regions {
	return &Regions{db: db}
}

// GetIdByName returns "" when no region has the given name.
func (repo *Regions) GetIdByName(ctx context.Context, name string) (string, error) {

	var region entities.Region
	name = entities.NormalizeRegionName(name)
	if err := repo.db.WithContext(ctx).Order("id").First(&region, "normalized_name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return region.ID, nil
}

func (repo *Regions) Count(ctx context.Context) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&entities.Region{}).Count(&count).Error
	return count, err
}

func (repo *Regions) AddAll(ctx context.Context, regions []entities.Region) error {
	if len(regions) == 0 {
		return nil
	}
	return repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(regions, 500).Error
}
