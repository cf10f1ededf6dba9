package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/justsurfingit/hireflow/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	basicParsePath    = "/parse-cv"
	advancedParsePath = "/parse-cv-advanced"

	// DefaultParseTimeout bounds a single call to the parsing service.
	DefaultParseTimeout = 30 * time.Second

	maxParseResponseBytes = 4 << 20
)

// ResumeParser extracts structured data from a résumé binary. A non-empty
// jobDescription asks for the job-fit analysis as well.
type ResumeParser interface {
	Parse(ctx context.Context, data []byte, filename, jobDescription string) (*ParsedResult, error)
}

type ParsedResult struct {
	BasicInfo   BasicInfo      `json:"basic_info"`
	Analysis    ResumeAnalysis `json:"analysis"`
	TextPreview string         `json:"text_preview"`
}

type BasicInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
}

type ResumeAnalysis struct {
	HardSkills      []string        `json:"hard_skills"`
	SoftSkills      []string        `json:"soft_skills"`
	YearsExperience *float64        `json:"years_experience"`
	CareerLevel     string          `json:"career_level"`
	JobFit          *JobFit         `json:"job_fit,omitempty"`
	Last3Positions  json.RawMessage `json:"last_3_positions"`
	EducationLevel  string          `json:"education_level"`
	// TotalSkills arrives as a JSON number that may carry a fraction ("12.0").
	TotalSkills *float64        `json:"total_skills"`
	TopKeywords json.RawMessage `json:"top_keywords"`
}

type JobFit struct {
	OverallScore *float64 `json:"overall_score"`
}

type ParserOption func(*ParserService)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) ParserOption {
	return func(s *ParserService) { s.client = c }
}

// WithRateLimit throttles outbound calls. Waiting for a token counts against
// the call's timeout.
func WithRateLimit(perSecond float64, burst int) ParserOption {
	return func(s *ParserService) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// ParserService is the HTTP client for the remote résumé parsing service.
// The service has no server-side timeout, so every call carries its own.
type ParserService struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewParserService(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...ParserOption) *ParserService {
	if timeout <= 0 {
		timeout = DefaultParseTimeout
	}
	s := &ParserService{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ParserService) Parse(ctx context.Context, data []byte, filename, jobDescription string) (*ParsedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	endpoint := basicParsePath
	if jobDescription != "" {
		endpoint = advancedParsePath
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			// Wait fails early when no token can arrive before the deadline,
			// before ctx itself has expired.
			if !errors.Is(ctx.Err(), context.Canceled) {
				return nil, newError(KindTimeout, CodeCVParse, fmt.Errorf("waiting for cv parser rate limit: %w", err))
			}
			return nil, s.classify(ctx, err)
		}
	}

	body, contentType, err := buildParseForm(data, filename, jobDescription)
	if err != nil {
		return nil, newError(KindUpstream, CodeCVParse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, body)
	if err != nil {
		return nil, newError(KindUpstream, CodeCVParse, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("calling cv parser", zap.String("endpoint", endpoint), zap.String("filename", filename), zap.Int("bytes", len(data)))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		s.logger.Debug("cv parser returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", logger.Truncate(string(snippet), 200)),
		)
		return nil, newError(KindUpstream, CodeCVParse, fmt.Errorf("cv parsing failed with status: %d", resp.StatusCode))
	}

	var result ParsedResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxParseResponseBytes)).Decode(&result); err != nil {
		return nil, s.classify(ctx, fmt.Errorf("decoding parser response: %w", err))
	}
	return &result, nil
}

// classify turns a transport failure into a TimeoutError when our own
// deadline fired and an UpstreamError otherwise.
func (s *ParserService) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, CodeCVParse, fmt.Errorf("cv parsing timed out after %s", s.timeout))
	}
	return newError(KindUpstream, CodeCVParse, err)
}

func buildParseForm(data []byte, filename, jobDescription string) (io.Reader, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}

	if jobDescription != "" {
		if err := w.WriteField("job_description", jobDescription); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &b, w.FormDataContentType(), nil
}
