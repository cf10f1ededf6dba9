package services

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/justsurfingit/hireflow/internal/models"
	"github.com/justsurfingit/hireflow/internal/storage"
	"gorm.io/gorm"
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	timestampPrefix = regexp.MustCompile(`^\d+-`)
)

// CurrentResume describes the résumé a candidate's profile points at.
type CurrentResume struct {
	Path string
	// Name is the file name as uploaded, without the storage timestamp.
	Name       string
	UploadedAt time.Time
}

// ResolvedResume is the binary to parse and the path to record on the application.
type ResolvedResume struct {
	Data     []byte
	Filename string
	Path     string
}

// ResumeService owns the candidate's current-résumé pointer and the stored binaries.
type ResumeService struct {
	DB    *gorm.DB
	Store storage.BlobStore
	Now   func() time.Time
}

func NewResumeService(db *gorm.DB, store storage.BlobStore) *ResumeService {
	return &ResumeService{DB: db, Store: store, Now: time.Now}
}

func (s *ResumeService) FindCandidate(ctx context.Context, id uint) (*models.Candidate, error) {
	if id == 0 {
		return nil, notFound(CodeCandidate)
	}
	var c models.Candidate
	err := s.DB.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeCandidate)
	}
	if err != nil {
		return nil, persistenceError("find candidate", err)
	}
	return &c, nil
}

// Resolve picks the résumé for a submission. A fresh upload is stored and
// becomes the candidate's current résumé; otherwise the stored one is read
// without touching the candidate.
func (s *ResumeService) Resolve(ctx context.Context, candidate *models.Candidate, upload *Upload) (*ResolvedResume, error) {
	if upload != nil {
		ref, err := s.SaveUpload(ctx, candidate.ID, upload)
		if err != nil {
			return nil, err
		}
		return &ResolvedResume{Data: upload.Data, Filename: upload.Filename, Path: ref}, nil
	}

	if candidate.ResumeURL == nil || *candidate.ResumeURL == "" {
		return nil, validationError(CodeNoResumeOnFile)
	}
	ref := *candidate.ResumeURL
	data, err := s.Store.Get(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newError(KindValidation, CodeNoResumeOnFile, err)
	}
	if err != nil {
		return nil, persistenceError("read resume", err)
	}
	return &ResolvedResume{Data: data, Filename: path.Base(ref), Path: ref}, nil
}

// SaveUpload saves an upload and points the candidate at it. Concurrent uploads
// by the same candidate are last-write-wins on the pointer.
func (s *ResumeService) SaveUpload(ctx context.Context, candidateID uint, upload *Upload) (string, error) {
	ref, err := s.Store.Put(ctx, StoredName(s.Now(), upload.Filename), upload.Data)
	if err != nil {
		return "", persistenceError("store resume", err)
	}
	res := s.DB.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ?", candidateID).
		Update("resume_url", ref)
	if res.Error != nil {
		return "", persistenceError("update candidate resume", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", notFound(CodeCandidate)
	}
	return ref, nil
}

// Current returns the candidate's current résumé, or nil when none was uploaded.
// The candidate's last update time stands in for the upload time.
func (s *ResumeService) Current(ctx context.Context, candidateID uint) (*CurrentResume, error) {
	c, err := s.FindCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if c.ResumeURL == nil || *c.ResumeURL == "" {
		return nil, nil
	}
	return &CurrentResume{
		Path:       *c.ResumeURL,
		Name:       OriginalName(*c.ResumeURL),
		UploadedAt: c.UpdatedAt,
	}, nil
}

// OriginalName undoes StoredName's timestamp prefix for display.
func OriginalName(ref string) string {
	return timestampPrefix.ReplaceAllString(path.Base(ref), "")
}

// StoredName builds "<unix millis>-<name>" with whitespace runs turned into dashes.
func StoredName(now time.Time, original string) string {
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(strings.TrimSpace(original))
	name = whitespaceRun.ReplaceAllString(name, "-")
	if name == "" {
		name = "resume"
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + name
}
