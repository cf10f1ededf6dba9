package services

import (
	"context"
	"fmt"

	"github.com/justsurfingit/hireflow/internal/models"
	"gorm.io/gorm"
)

// Audience selects who a notification is for. Exactly one of the fields is set.
type Audience struct {
	Admin       bool
	EmployerID  *uint
	CandidateID *uint
}

func AdminAudience() Audience { return Audience{Admin: true} }

func EmployerAudience(id uint) Audience { return Audience{EmployerID: &id} }

func CandidateAudience(id uint) Audience { return Audience{CandidateID: &id} }

func (a Audience) validate() error {
	n := 0
	if a.Admin {
		n++
	}
	if a.EmployerID != nil {
		n++
	}
	if a.CandidateID != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("notification audience must name exactly one target, got %d", n)
	}
	return nil
}

func (a Audience) scope(db *gorm.DB) *gorm.DB {
	switch {
	case a.Admin:
		return db.Where("admin = ?", true)
	case a.EmployerID != nil:
		return db.Where("employer_id = ?", *a.EmployerID)
	default:
		return db.Where("candidate_id = ?", *a.CandidateID)
	}
}

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// WithTx returns a service writing through tx, so a notification commits or
// rolls back with the change that caused it.
func (s *NotificationService) WithTx(tx *gorm.DB) *NotificationService {
	return &NotificationService{DB: tx}
}

// Emit writes one notification. There is no retry: a failed write is
// returned to the caller.
func (s *NotificationService) Emit(ctx context.Context, aud Audience, title, body string, jobID *uint) (*models.Notification, error) {
	if err := aud.validate(); err != nil {
		return nil, newError(KindValidation, "audience", err)
	}
	n := &models.Notification{
		Title:       title,
		Body:        body,
		Admin:       aud.Admin,
		EmployerID:  aud.EmployerID,
		CandidateID: aud.CandidateID,
		JobID:       jobID,
	}
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, persistenceError("create notification", err)
	}
	return n, nil
}

// Unread lists the audience's unread notifications, oldest first. Bodies of
// job-linked notifications are prefixed with the job title.
func (s *NotificationService) Unread(ctx context.Context, aud Audience) ([]models.Notification, error) {
	if err := aud.validate(); err != nil {
		return nil, newError(KindValidation, "audience", err)
	}
	var notes []models.Notification
	err := aud.scope(s.DB.WithContext(ctx)).
		Where("read = ?", false).
		Preload("Job").
		Order("created_at ASC, id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, persistenceError("list notifications", err)
	}
	for i := range notes {
		if notes[i].Job != nil {
			notes[i].Body = fmt.Sprintf("Job: %s - %s", notes[i].Job.Title, notes[i].Body)
		}
	}
	return notes, nil
}

// MarkAllRead flags every unread notification of the audience as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, aud Audience) (int64, error) {
	if err := aud.validate(); err != nil {
		return 0, newError(KindValidation, "audience", err)
	}
	res := aud.scope(s.DB.WithContext(ctx).Model(&models.Notification{})).
		Where("read = ?", false).
		Update("read", true)
	if res.Error != nil {
		return 0, persistenceError("mark notifications read", res.Error)
	}
	return res.RowsAffected, nil
}
