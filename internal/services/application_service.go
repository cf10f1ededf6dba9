package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/justsurfingit/hireflow/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const textPreviewLimit = 1000

type SubmissionResult struct {
	Application *models.Application
	Score       int
	// Parsed is nil when the parser failed or timed out.
	Parsed *ParsedResult
}

// ApplicationService runs the intake pipeline: validate, resolve the résumé,
// parse it, score it and store the application.
type ApplicationService struct {
	Validator    *IntakeValidator
	Resumes      *ResumeService
	Parser       ResumeParser
	Applications *ApplicationRepository
	Logger       *zap.Logger
}

func NewApplicationService(v *IntakeValidator, resumes *ResumeService, parser ResumeParser, apps *ApplicationRepository, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		Validator:    v,
		Resumes:      resumes,
		Parser:       parser,
		Applications: apps,
		Logger:       logger,
	}
}

func (s *ApplicationService) Submit(ctx context.Context, sub Submission) (*SubmissionResult, error) {
	log := s.Logger.With(zap.Uint("candidate_id", sub.CandidateID), zap.Uint("job_id", sub.JobID))

	intake, err := s.Validator.Validate(ctx, sub)
	if err != nil {
		s.logFailure(log, "submission rejected", err)
		return nil, err
	}

	resume, err := s.Resumes.Resolve(ctx, intake.Candidate, sub.Resume)
	if err != nil {
		s.logFailure(log, "resolving resume", err)
		return nil, err
	}

	// A parse failure never fails the submission.
	parsed, err := s.Parser.Parse(ctx, resume.Data, resume.Filename, intake.Job.Description)
	if err != nil {
		log.Warn("cv parsing failed, continuing without parsed data",
			zap.String("kind", KindOf(err).String()),
			zap.Error(err),
		)
		parsed = nil
	}

	var text string
	if parsed != nil {
		text = parsed.TextPreview
	}
	score := ScoreFit(text, intake.Job.Description)

	candidateID := sub.CandidateID
	app := &models.Application{
		JobID:       intake.Job.ID,
		EmployerID:  intake.Job.EmployerID,
		CandidateID: &candidateID,
		ResumePath:  resume.Path,
		Status:      models.StatusPending,
		Score:       &score,
	}
	if parsed != nil {
		applyParsed(app, parsed)
	}

	// The create is not abandoned when the client goes away mid-write.
	if err := s.Applications.Create(context.WithoutCancel(ctx), app); err != nil {
		s.logFailure(log, "creating application", err)
		return nil, err
	}

	log.Info("application submitted", zap.Uint("application_id", app.ID), zap.Int("score", score), zap.Bool("parsed", parsed != nil))
	return &SubmissionResult{Application: app, Score: score, Parsed: parsed}, nil
}

// ApplicationStatus returns the candidate's application for a job, or nil.
func (s *ApplicationService) ApplicationStatus(ctx context.Context, candidateID, jobID uint) (*models.Application, error) {
	if jobID == 0 {
		return nil, validationError(CodeMissingFields)
	}
	return s.Applications.FindForCandidate(ctx, candidateID, jobID)
}

// ForEmployer loads one application, checking the employer owns it.
func (s *ApplicationService) ForEmployer(ctx context.Context, employerID, applicationID uint) (*models.Application, error) {
	app, err := s.Applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.EmployerID != employerID {
		return nil, newError(KindAuthorization, CodeNotOwner, nil)
	}
	return app, nil
}

func (s *ApplicationService) ListForEmployer(ctx context.Context, employerID uint) ([]models.Application, error) {
	return s.Applications.ListByEmployer(ctx, employerID)
}

func (s *ApplicationService) logFailure(log *zap.Logger, msg string, err error) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindPersistence {
		log.Error(msg, zap.Error(err))
		return
	}
	log.Debug(msg, zap.Error(err))
}

func applyParsed(app *models.Application, p *ParsedResult) {
	a := p.Analysis

	app.ExtractedName = optString(p.BasicInfo.Name)
	app.ExtractedEmail = optString(p.BasicInfo.Email)
	app.ExtractedPhone = optString(p.BasicInfo.Phone)
	app.ExtractedLinkedIn = optString(p.BasicInfo.LinkedIn)

	if a.HardSkills != nil || a.SoftSkills != nil {
		merged := make([]string, 0, len(a.HardSkills)+len(a.SoftSkills))
		merged = append(merged, a.HardSkills...)
		merged = append(merged, a.SoftSkills...)
		app.ExtractedSkills = jsonColumn(merged)
	}
	if a.HardSkills != nil {
		app.HardSkills = jsonColumn(a.HardSkills)
	}
	if a.SoftSkills != nil {
		app.SoftSkills = jsonColumn(a.SoftSkills)
	}

	app.YearsExperience = a.YearsExperience
	app.CareerLevel = optString(a.CareerLevel)
	if a.JobFit != nil {
		app.JobFitRatio = a.JobFit.OverallScore
	}
	app.Last3Positions = rawColumn(a.Last3Positions)
	app.EducationLevel = optString(a.EducationLevel)
	if a.TotalSkills != nil {
		n := int(math.Round(*a.TotalSkills))
		app.TotalSkills = &n
	}
	app.TopKeywords = rawColumn(a.TopKeywords)
	app.TextPreview = optString(truncateRunes(p.TextPreview, textPreviewLimit))
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func jsonColumn(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func rawColumn(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
