package services

import (
	"context"
	"testing"

	"github.com/justsurfingit/hireflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitOne(t *testing.T, f *fixture) *models.Application {
	t.Helper()
	f.parser.result = &ParsedResult{}
	res, err := f.intake.Submit(context.Background(), f.submission(f.pdfUpload("cv.pdf")))
	require.NoError(t, err)
	return res.Application
}

func candidateNotes(t *testing.T, f *fixture) []models.Notification {
	t.Helper()
	var notes []models.Notification
	require.NoError(t, f.db.Where("candidate_id = ?", f.candidate.ID).Find(&notes).Error)
	return notes
}

func TestTransitionTable(t *testing.T) {
	all := []models.ApplicationStatus{models.StatusPending, models.StatusViewed, models.StatusAccepted, models.StatusRejected}
	allowed := map[[2]models.ApplicationStatus]bool{
		{models.StatusPending, models.StatusViewed}:   true,
		{models.StatusPending, models.StatusAccepted}: true,
		{models.StatusPending, models.StatusRejected}: true,
		{models.StatusViewed, models.StatusAccepted}:  true,
		{models.StatusViewed, models.StatusRejected}:  true,
	}
	for _, from := range all {
		for _, to := range all {
			if from == to {
				continue
			}
			_, ok := lookupTransition(from, to)
			assert.Equal(t, allowed[[2]models.ApplicationStatus{from, to}], ok, "%s -> %s", from, to)
		}
	}
	assert.True(t, IsTerminal(models.StatusAccepted))
	assert.True(t, IsTerminal(models.StatusRejected))
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusViewed))
}

func TestUpdateStatusViewedNotifiesCandidate(t *testing.T) {
	f := newFixture(t)
	app := submitOne(t, f)

	updated, err := f.status.UpdateStatus(context.Background(), f.employer.ID, app.ID, models.StatusViewed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusViewed, updated.Status)

	notes := candidateNotes(t, f)
	require.Len(t, notes, 1)
	assert.Equal(t, "Application Viewed", notes[0].Title)
	assert.Contains(t, notes[0].Body, "Your application for Line Cook has been viewed")
	assert.False(t, notes[0].Read)
	require.NotNil(t, notes[0].JobID)
	assert.Equal(t, f.job.ID, *notes[0].JobID)

	var events []models.ApplicationEvent
	require.NoError(t, f.db.Where("application_id = ?", app.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "PENDING -> VIEWED", events[0].Details)
	assert.Equal(t, f.employer.ID, events[0].ActorID)
}

func TestUpdateStatusViewedTwiceIsNoop(t *testing.T) {
	f := newFixture(t)
	app := submitOne(t, f)

	_, err := f.status.UpdateStatus(context.Background(), f.employer.ID, app.ID, models.StatusViewed)
	require.NoError(t, err)
	updated, err := f.status.UpdateStatus(context.Background(), f.employer.ID, app.ID, models.StatusViewed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusViewed, updated.Status)

	assert.Len(t, candidateNotes(t, f), 1)
}

func TestUpdateStatusTerminal(t *testing.T) {
	f := newFixture(t)
	app := submitOne(t, f)
	ctx := context.Background()

	_, err := f.status.UpdateStatus(ctx, f.employer.ID, app.ID, models.StatusAccepted)
	require.NoError(t, err)
	assert.Empty(t, candidateNotes(t, f), "decisions emit no notification")

	_, err = f.status.UpdateStatus(ctx, f.employer.ID, app.ID, models.StatusViewed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.status.UpdateStatus(ctx, f.employer.ID, app.ID, models.StatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.status.UpdateStatus(ctx, f.employer.ID, app.ID, models.StatusAccepted)
	assert.NoError(t, err)

	var stored models.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, models.StatusAccepted, stored.Status)
}

func TestUpdateStatusViewedBackToPendingRejected(t *testing.T) {
	f := newFixture(t)
	app := submitOne(t, f)

	_, err := f.status.UpdateStatus(context.Background(), f.employer.ID, app.ID, models.StatusViewed)
	require.NoError(t, err)
	_, err = f.status.UpdateStatus(context.Background(), f.employer.ID, app.ID, models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusAuthorization(t *testing.T) {
	f := newFixture(t)
	app := submitOne(t, f)

	_, err := f.status.UpdateStatus(context.Background(), f.other.ID, app.ID, models.StatusViewed)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, KindAuthorization, KindOf(err))

	var stored models.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestUpdateStatusUnknownApplicationAndStatus(t *testing.T) {
	f := newFixture(t)
	app := submitOne(t, f)

	_, err := f.status.UpdateStatus(context.Background(), f.employer.ID, 9999, models.StatusViewed)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.status.UpdateStatus(context.Background(), f.employer.ID, app.ID, "ARCHIVED")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateStatusStaleRead(t *testing.T) {
	f := newFixture(t)
	app := submitOne(t, f)
	ctx := context.Background()

	stale, err := f.apps.FindByID(ctx, app.ID)
	require.NoError(t, err)

	// another employer session decides first
	_, err = f.status.UpdateStatus(ctx, f.employer.ID, app.ID, models.StatusRejected)
	require.NoError(t, err)

	_, err = f.status.apply(ctx, stale, f.employer.ID, models.StatusAccepted)
	assert.ErrorIs(t, err, ErrStaleStatus)

	var stored models.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, models.StatusRejected, stored.Status)
}

func TestUpdateStatusNotificationFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	app := submitOne(t, f)

	require.NoError(t, f.db.Migrator().DropTable(&models.Notification{}))

	_, err := f.status.UpdateStatus(context.Background(), f.employer.ID, app.ID, models.StatusViewed)
	require.Error(t, err)
	assert.Equal(t, KindPersistence, KindOf(err))

	var stored models.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status)

	var events int64
	require.NoError(t, f.db.Model(&models.ApplicationEvent{}).Count(&events).Error)
	assert.Zero(t, events)
}
