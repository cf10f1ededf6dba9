package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/hireflow/internal/config"
	"github.com/justsurfingit/hireflow/internal/database"
	"github.com/justsurfingit/hireflow/internal/models"
	"github.com/justsurfingit/hireflow/internal/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pdfBytes = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// stubParser records calls and returns a canned result or error.
type stubParser struct {
	mu      sync.Mutex
	result  *ParsedResult
	err     error
	calls   int
	lastFn  string
	lastJD  string
	lastLen int
}

func (p *stubParser) Parse(_ context.Context, data []byte, filename, jobDescription string) (*ParsedResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastFn = filename
	p.lastJD = jobDescription
	p.lastLen = len(data)
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type fixture struct {
	db        *gorm.DB
	fs        afero.Fs
	employer  models.Employer
	other     models.Employer
	job       models.Job
	candidate models.Candidate
	parser    *stubParser

	jobs    *JobService
	resumes *ResumeService
	apps    *ApplicationRepository
	notes   *NotificationService
	intake  *ApplicationService
	status  *StatusService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{
		db:       db,
		fs:       afero.NewMemMapFs(),
		employer: models.Employer{CompanyName: "Bistro", Email: "hr@bistro.test"},
		other:    models.Employer{CompanyName: "Diner", Email: "hr@diner.test"},
		parser:   &stubParser{},
	}
	require.NoError(t, db.Create(&f.employer).Error)
	require.NoError(t, db.Create(&f.other).Error)

	f.job = models.Job{
		EmployerID:  f.employer.ID,
		Slug:        "line-cook",
		Title:       "Line Cook",
		Description: "We need a Cook with Excellent Communication skills",
	}
	require.NoError(t, db.Create(&f.job).Error)

	f.candidate = models.Candidate{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, db.Create(&f.candidate).Error)

	logger := zap.NewNop()
	store := storage.NewFileStore(f.fs, "public", "/uploads")

	f.jobs = NewJobService(db)
	f.resumes = NewResumeService(db, store)
	f.resumes.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	f.apps = NewApplicationRepository(db)
	f.notes = NewNotificationService(db)
	validator := NewIntakeValidator(f.jobs, f.resumes, f.apps, MaxResumeBytes)
	f.intake = NewApplicationService(validator, f.resumes, f.parser, f.apps, logger)
	f.status = NewStatusService(db, f.apps, f.notes, logger)
	return f
}

func (f *fixture) pdfUpload(name string) *Upload {
	return &Upload{Filename: name, ContentType: MIMEPDF, Size: int64(len(pdfBytes)), Data: []byte(pdfBytes)}
}

func (f *fixture) submission(upload *Upload) Submission {
	return Submission{
		CandidateID: f.candidate.ID,
		JobID:       f.job.ID,
		EmployerID:  f.employer.ID,
		Resume:      upload,
	}
}

func (f *fixture) countApplications(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Application{}).Count(&n).Error)
	return n
}

func (f *fixture) reloadCandidate(t *testing.T) models.Candidate {
	t.Helper()
	var c models.Candidate
	require.NoError(t, f.db.First(&c, f.candidate.ID).Error)
	return c
}

func (f *fixture) seedStoredResume(t *testing.T, ref, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, "public"+ref, []byte(content), 0o644))
	require.NoError(t, f.db.Model(&models.Candidate{}).Where("id = ?", f.candidate.ID).Update("resume_url", ref).Error)
	f.candidate.ResumeURL = &ref
}
