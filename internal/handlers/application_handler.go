package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireflow/internal/auth"
	"github.com/justsurfingit/hireflow/internal/dtos"
	"github.com/justsurfingit/hireflow/internal/models"
	"github.com/justsurfingit/hireflow/internal/services"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
	Status       *services.StatusService
	Resumes      *services.ResumeService
	MaxBytes     int64
}

func NewApplicationHandler(apps *services.ApplicationService, status *services.StatusService, resumes *services.ResumeService, maxBytes int64) *ApplicationHandler {
	return &ApplicationHandler{
		Applications: apps,
		Status:       status,
		Resumes:      resumes,
		MaxBytes:     maxBytes,
	}
}

// Submit is the POST /applications endpoint.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	upload, err := h.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid form data: " + err.Error()})
		return
	}

	res, err := h.Applications.Submit(c.Request.Context(), services.Submission{
		CandidateID: actor.ID,
		JobID:       formID(c.PostForm("jobId")),
		EmployerID:  formID(c.PostForm("employerId")),
		Resume:      upload,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	data := &dtos.SubmissionData{
		ID:         res.Application.ID,
		Score:      res.Score,
		ResumePath: res.Application.ResumePath,
	}
	if res.Parsed != nil {
		data.Analysis = res.Parsed.Analysis
		data.BasicInfo = res.Parsed.BasicInfo
		data.TextPreview = res.Parsed.TextPreview
	}
	c.JSON(http.StatusOK, dtos.SubmissionResponse{
		Success:       true,
		ApplicationID: res.Application.ID,
		Score:         res.Score,
		Message:       "Application submitted successfully!",
		Data:          data,
	})
}

// UpdateStatus is the PATCH /applications/status endpoint.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	var req dtos.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}

	app, err := h.Status.UpdateStatus(c.Request.Context(), actor.ID, req.ApplicationID, models.ApplicationStatus(req.NewStatus))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app})
}

// ListForEmployer is the GET /employer/applications endpoint. Applications
// come grouped by job and ordered by ?sort=createdAt_desc|score_desc|address_asc.
func (h *ApplicationHandler) ListForEmployer(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	sortBy, err := services.ParseApplicationSort(c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}
	groups, err := h.Applications.GroupedForEmployer(c.Request.Context(), actor.ID, sortBy)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dtos.JobApplications, 0, len(groups))
	for _, g := range groups {
		apps := make([]dtos.ApplicationSummary, 0, len(g.Applications))
		for _, a := range g.Applications {
			apps = append(apps, summarize(a))
		}
		out = append(out, dtos.JobApplications{
			Job:          dtos.JobSummary{ID: g.Job.ID, Slug: g.Job.Slug, Title: g.Job.Title},
			Applications: apps,
		})
	}
	c.JSON(http.StatusOK, dtos.EmployerApplicationsResponse{Sort: string(sortBy), Jobs: out})
}

func summarize(a models.Application) dtos.ApplicationSummary {
	s := dtos.ApplicationSummary{
		ID:          a.ID,
		JobID:       a.JobID,
		JobTitle:    a.Job.Title,
		CandidateID: a.CandidateID,
		ResumePath:  a.ResumePath,
		Status:      string(a.Status),
		Score:       a.Score,
		CreatedAt:   a.CreatedAt,
	}
	if a.Candidate != nil {
		s.CandidateName = a.Candidate.Name
		s.CandidateAddress = a.Candidate.Address
	}
	return s
}

// GetForEmployer is the GET /employer/applications/:id endpoint.
func (h *ApplicationHandler) GetForEmployer(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application ID"})
		return
	}
	app, err := h.Applications.ForEmployer(c.Request.Context(), actor.ID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app})
}

// CandidateStatus is the GET /candidate/application-status endpoint.
func (h *ApplicationHandler) CandidateStatus(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	jobID := formID(c.Query("jobId"))
	if jobID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Job ID is required"})
		return
	}
	app, err := h.Applications.ApplicationStatus(c.Request.Context(), actor.ID, jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	if app == nil {
		c.JSON(http.StatusOK, dtos.ApplicationStatusResponse{HasApplied: false})
		return
	}
	created := app.CreatedAt.UTC()
	c.JSON(http.StatusOK, dtos.ApplicationStatusResponse{HasApplied: true, ApplicationDate: &created})
}

// UploadResume is the POST /candidate/resume endpoint.
func (h *ApplicationHandler) UploadResume(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	upload, err := h.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid form data: " + err.Error()})
		return
	}
	if upload == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No file provided"})
		return
	}
	if err := services.ValidateUpload(upload, h.MaxBytes); err != nil {
		respondError(c, err)
		return
	}

	ref, err := h.Resumes.SaveUpload(c.Request.Context(), actor.ID, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.ResumeUploadResponse{
		Success:    true,
		ResumePath: ref,
		Message:    "Resume successfully uploaded and saved to your profile",
	})
}

// ListResumes is the GET /candidate/resumes endpoint. A candidate has at most
// the one profile résumé.
func (h *ApplicationHandler) ListResumes(c *gin.Context) {
	actor, _ := auth.FromContext(c)

	cur, err := h.Resumes.Current(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	resumes := []dtos.ResumeEntry{}
	if cur != nil {
		resumes = append(resumes, dtos.ResumeEntry{
			Path:       cur.Path,
			UploadedAt: cur.UploadedAt.UTC(),
			Name:       cur.Name,
			Type:       "profile",
			IsProfile:  true,
		})
	}
	c.JSON(http.StatusOK, dtos.ResumeListResponse{Success: true, Resumes: resumes, Count: len(resumes)})
}

// readUpload returns the "resume" form file, or nil when none was sent.
// Oversized files are not read into memory; their declared size is enough
// for validation to reject them.
func (h *ApplicationHandler) readUpload(c *gin.Context) (*services.Upload, error) {
	fh, err := c.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u := &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if fh.Size > h.MaxBytes {
		return u, nil
	}
	u.Data, err = readFileHeader(fh, h.MaxBytes)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func readFileHeader(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}

func formID(s string) uint {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}
