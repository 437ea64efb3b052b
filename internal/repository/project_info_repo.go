package repository

import (
	"context"

	"gorm.io/gorm"

	"boqtracker/internal/domain"
)

const entityProjectInfo = "project info"

type ProjectInfoRepository struct {
	db *gorm.DB
}

func NewProjectInfoRepository(db *gorm.DB) *ProjectInfoRepository {
	return &ProjectInfoRepository{db: db}
}

// Get returns the singleton row.
func (r *ProjectInfoRepository) Get(ctx context.Context) (*domain.ProjectInfo, error) {
	var info domain.ProjectInfo
	if err := r.db.WithContext(ctx).Order("id").First(&info).Error; err != nil {
		return nil, translate("get project info", entityProjectInfo, "singleton", err)
	}
	return &info, nil
}

// Save inserts the singleton when info has no id, otherwise updates it.
func (r *ProjectInfoRepository) Save(ctx context.Context, info *domain.ProjectInfo) error {
	err := r.db.WithContext(ctx).Save(info).Error
	return translate("save project info", entityProjectInfo, "singleton", err)
}
