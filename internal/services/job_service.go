package services

import (
	"context"
	"errors"

	"github.com/justsurfingit/hireflow/internal/models"
	"gorm.io/gorm"
)

type JobService struct {
	DB *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{
		DB: db,
	}
}

// FindJob loads a job by id. The description returned here is the one used
// for scoring, later edits never touch existing applications.
func (s *JobService) FindJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeJob)
	}
	if err != nil {
		return nil, persistenceError("find job", err)
	}
	return &job, nil
}

func (s *JobService) FindBySlug(ctx context.Context, slug string) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeJob)
	}
	if err != nil {
		return nil, persistenceError("find job", err)
	}
	return &job, nil
}
