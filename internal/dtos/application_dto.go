package dtos

import "time"

type StatusUpdateRequest struct {
	ApplicationID uint   `json:"applicationId" binding:"required"`
	NewStatus     string `json:"newStatus" binding:"required,oneof=PENDING VIEWED ACCEPTED REJECTED"`
}

type SubmissionResponse struct {
	Success       bool            `json:"success"`
	ApplicationID uint            `json:"applicationId"`
	Score         int             `json:"score"`
	Message       string          `json:"message"`
	Data          *SubmissionData `json:"data"`
}

type SubmissionData struct {
	ID          uint   `json:"id"`
	Score       int    `json:"score"`
	ResumePath  string `json:"resumePath"`
	Analysis    any    `json:"analysis"`
	BasicInfo   any    `json:"basic_info"`
	TextPreview any    `json:"text_preview"`
}

type ApplicationStatusResponse struct {
	HasApplied      bool       `json:"hasApplied"`
	ApplicationDate *time.Time `json:"applicationDate,omitempty"`
}

type ApplicationSummary struct {
	ID               uint      `json:"id"`
	JobID            uint      `json:"job_id"`
	JobTitle         string    `json:"job_title"`
	CandidateID      *uint     `json:"candidate_id"`
	CandidateName    string    `json:"candidate_name,omitempty"`
	CandidateAddress string    `json:"candidate_address,omitempty"`
	ResumePath       string    `json:"resume_path"`
	Status           string    `json:"status"`
	Score            *int      `json:"score"`
	CreatedAt        time.Time `json:"created_at"`
}

type JobSummary struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type JobApplications struct {
	Job          JobSummary           `json:"job"`
	Applications []ApplicationSummary `json:"applications"`
}

type EmployerApplicationsResponse struct {
	Sort string            `json:"sort"`
	Jobs []JobApplications `json:"jobs"`
}

type ResumeEntry struct {
	Path       string    `json:"path"`
	UploadedAt time.Time `json:"uploadedAt"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	IsProfile  bool      `json:"isProfile"`
}

type ResumeListResponse struct {
	Success bool          `json:"success"`
	Resumes []ResumeEntry `json:"resumes"`
	Count   int           `json:"count"`
}

type ResumeUploadResponse struct {
	Success    bool   `json:"success"`
	ResumePath string `json:"resumePath"`
	Message    string `json:"message"`
}
