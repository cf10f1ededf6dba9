package services

import (
	"context"
	"errors"

	"github.com/justsurfingit/hireflow/internal/models"
	"gorm.io/gorm"
)

// ApplicationRepository stores applications. The unique index on
// (candidate_id, job_id) is what actually prevents duplicates; Exists is only
// an early answer for the common case.
type ApplicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

// Create writes the whole record in one statement.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	err := r.DB.WithContext(ctx).Omit("Job", "Candidate").Create(app).Error
	if isUniqueViolation(err) {
		return newError(KindConflict, CodeDuplicateApplication, nil)
	}
	if err != nil {
		return persistenceError("create application", err)
	}
	return nil
}

func (r *ApplicationRepository) Exists(ctx context.Context, candidateID, jobID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Application{}).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		Count(&count).Error
	if err != nil {
		return false, persistenceError("check application", err)
	}
	return count > 0, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := r.DB.WithContext(ctx).Preload("Job").First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeApplication)
	}
	if err != nil {
		return nil, persistenceError("find application", err)
	}
	return &app, nil
}

// FindForCandidate returns the candidate's application for a job, or nil.
func (r *ApplicationRepository) FindForCandidate(ctx context.Context, candidateID, jobID uint) (*models.Application, error) {
	var apps []models.Application
	err := r.DB.WithContext(ctx).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		Limit(1).Find(&apps).Error
	if err != nil {
		return nil, persistenceError("find application", err)
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

// ListByEmployer returns the employer's applications with job and candidate,
// newest first.
func (r *ApplicationRepository) ListByEmployer(ctx context.Context, employerID uint) ([]models.Application, error) {
	var apps []models.Application
	err := r.DB.WithContext(ctx).Preload("Job").Preload("Candidate").
		Where("employer_id = ?", employerID).
		Order("created_at DESC, id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, persistenceError("list applications", err)
	}
	return apps, nil
}
