package services

import (
	"context"
	"fmt"

	"github.com/justsurfingit/hireflow/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const EventStatusChange = "STATUS_CHANGE"

type effect int

const (
	effectNone effect = iota
	effectNotifyViewed
)

type transition struct {
	allowed bool
	effect  effect
}

// transitions lists every permitted move. Anything absent is rejected, and
// same-status requests never reach the table.
var transitions = map[models.ApplicationStatus]map[models.ApplicationStatus]transition{
	models.StatusPending: {
		models.StatusViewed:   {allowed: true, effect: effectNotifyViewed},
		models.StatusAccepted: {allowed: true},
		models.StatusRejected: {allowed: true},
	},
	models.StatusViewed: {
		models.StatusAccepted: {allowed: true},
		models.StatusRejected: {allowed: true},
	},
	models.StatusAccepted: {},
	models.StatusRejected: {},
}

func lookupTransition(from, to models.ApplicationStatus) (transition, bool) {
	t, ok := transitions[from][to]
	return t, ok && t.allowed
}

// IsTerminal reports whether no transition leaves st.
func IsTerminal(st models.ApplicationStatus) bool {
	return len(transitions[st]) == 0
}

type StatusService struct {
	DB            *gorm.DB
	Applications  *ApplicationRepository
	Notifications *NotificationService
	Logger        *zap.Logger
}

func NewStatusService(db *gorm.DB, apps *ApplicationRepository, notes *NotificationService, logger *zap.Logger) *StatusService {
	return &StatusService{
		DB:            db,
		Applications:  apps,
		Notifications: notes,
		Logger:        logger,
	}
}

// UpdateStatus moves an application to a new status on behalf of an
// employer. Only the employer owning the application may do so.
func (s *StatusService) UpdateStatus(ctx context.Context, employerID, applicationID uint, to models.ApplicationStatus) (*models.Application, error) {
	if _, ok := models.ParseApplicationStatus(string(to)); !ok {
		return nil, validationError(CodeInvalidStatus)
	}

	app, err := s.Applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.EmployerID != employerID {
		return nil, newError(KindAuthorization, CodeNotOwner, nil)
	}

	return s.apply(ctx, app, employerID, to)
}

// apply runs the transition against the status that was read. The update is
// conditional on that status, so a concurrent change makes this one fail
// with ErrStaleStatus instead of overwriting it.
func (s *StatusService) apply(ctx context.Context, app *models.Application, actorID uint, to models.ApplicationStatus) (*models.Application, error) {
	from := app.Status
	if from == to {
		s.Logger.Debug("status unchanged", zap.Uint("application_id", app.ID), zap.String("status", string(to)))
		return app, nil
	}

	t, ok := lookupTransition(from, to)
	if !ok {
		return nil, newError(KindInvalidTransition, fmt.Sprintf("%s -> %s", from, to), nil)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", app.ID, from).
			Update("status", to)
		if res.Error != nil {
			return persistenceError("update status", res.Error)
		}
		if res.RowsAffected == 0 {
			return newError(KindConflict, CodeStaleStatus, nil)
		}

		event := models.ApplicationEvent{
			ApplicationID: app.ID,
			ActorID:       actorID,
			EventType:     EventStatusChange,
			Details:       fmt.Sprintf("%s -> %s", from, to),
		}
		if err := tx.Create(&event).Error; err != nil {
			return persistenceError("record status change", err)
		}

		if t.effect == effectNotifyViewed && app.CandidateID != nil {
			jobID := app.JobID
			_, err := s.Notifications.WithTx(tx).Emit(ctx,
				CandidateAudience(*app.CandidateID),
				"Application Viewed",
				fmt.Sprintf("Your application for %s has been viewed by the employer.", app.Job.Title),
				&jobID,
			)
			return err
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindPersistence {
			s.Logger.Error("status update failed", zap.Uint("application_id", app.ID), zap.Error(err))
		}
		return nil, err
	}

	s.Logger.Info("application status changed",
		zap.Uint("application_id", app.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	app.Status = to
	return app, nil
}
