package services

import (
	"context"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/justsurfingit/hireflow/internal/models"
)

const (
	MaxResumeBytes = 5 << 20

	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedResumeTypes = []string{MIMEPDF, MIMEDOCX}

// Upload is a résumé file received with a request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Submission is a candidate's request to apply for a job.
type Submission struct {
	CandidateID uint
	JobID       uint
	EmployerID  uint
	Resume      *Upload
}

// Intake is a submission that passed validation, with what was loaded on the way.
type Intake struct {
	Submission
	Job       *models.Job
	Candidate *models.Candidate
}

// IntakeValidator rejects submissions before any call to the parser is made.
type IntakeValidator struct {
	Jobs         *JobService
	Candidates   *ResumeService
	Applications *ApplicationRepository
	MaxBytes     int64
}

func NewIntakeValidator(jobs *JobService, candidates *ResumeService, apps *ApplicationRepository, maxBytes int64) *IntakeValidator {
	if maxBytes <= 0 {
		maxBytes = MaxResumeBytes
	}
	return &IntakeValidator{
		Jobs:         jobs,
		Candidates:   candidates,
		Applications: apps,
		MaxBytes:     maxBytes,
	}
}

func (v *IntakeValidator) Validate(ctx context.Context, sub Submission) (*Intake, error) {
	if sub.JobID == 0 || sub.EmployerID == 0 {
		return nil, validationError(CodeMissingFields)
	}

	job, err := v.Jobs.FindJob(ctx, sub.JobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != sub.EmployerID {
		return nil, validationError(CodeEmployerMismatch)
	}

	candidate, err := v.Candidates.FindCandidate(ctx, sub.CandidateID)
	if err != nil {
		return nil, err
	}

	exists, err := v.Applications.Exists(ctx, sub.CandidateID, sub.JobID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newError(KindConflict, CodeDuplicateApplication, nil)
	}

	if sub.Resume != nil {
		if err := ValidateUpload(sub.Resume, v.MaxBytes); err != nil {
			return nil, err
		}
	} else if candidate.ResumeURL == nil || *candidate.ResumeURL == "" {
		return nil, validationError(CodeNoResumeOnFile)
	}

	return &Intake{Submission: sub, Job: job, Candidate: candidate}, nil
}

// ValidateUpload checks size and type of a résumé file. The declared content
// type is trusted when present; otherwise the bytes are sniffed.
func ValidateUpload(u *Upload, maxBytes int64) error {
	size := u.Size
	if size < int64(len(u.Data)) {
		size = int64(len(u.Data))
	}
	if size > maxBytes {
		return validationError(CodeFileTooLarge)
	}
	if !allowedResumeType(u) {
		return validationError(CodeUnsupportedFileType)
	}
	return nil
}

func allowedResumeType(u *Upload) bool {
	declared := strings.ToLower(strings.TrimSpace(u.ContentType))
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		declared = mt
	}

	if declared != "" && declared != "application/octet-stream" {
		for _, t := range allowedResumeTypes {
			if declared == t {
				return true
			}
		}
		return false
	}

	detected := mimetype.Detect(u.Data)
	for _, t := range allowedResumeTypes {
		if detected.Is(t) {
			return true
		}
	}
	return false
}
