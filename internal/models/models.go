package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusViewed   ApplicationStatus = "VIEWED"
	StatusAccepted ApplicationStatus = "ACCEPTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

// ParseApplicationStatus reports whether s is one of the four workflow states.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	switch st := ApplicationStatus(s); st {
	case StatusPending, StatusViewed, StatusAccepted, StatusRejected:
		return st, true
	}
	return "", false
}

type Employer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyName string `gorm:"not null" json:"company_name"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`

	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EmployerID uint     `gorm:"not null;index" json:"employer_id"`
	Employer   Employer `json:"-"`

	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `json:"location"`
}

type Candidate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `json:"name"`
	Email   string `gorm:"uniqueIndex;not null" json:"email"`
	Address string `json:"address"`
	// ResumeURL points at the most recent upload. Nil until the first one.
	ResumeURL *string `json:"resume_url"`
}

// Application is one candidate's submission for one job. Everything except
// Status is written once at creation.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobID       uint       `gorm:"not null;uniqueIndex:idx_application_candidate_job,priority:2" json:"job_id"`
	Job         Job        `json:"job,omitempty"`
	EmployerID  uint       `gorm:"not null;index" json:"employer_id"`
	CandidateID *uint      `gorm:"uniqueIndex:idx_application_candidate_job,priority:1" json:"candidate_id"`
	Candidate   *Candidate `json:"candidate,omitempty"`

	ResumePath string            `gorm:"not null" json:"resume_path"`
	Status     ApplicationStatus `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	Score      *int              `json:"score"`

	ExtractedName     *string        `json:"extracted_name"`
	ExtractedEmail    *string        `json:"extracted_email"`
	ExtractedPhone    *string        `json:"extracted_phone"`
	ExtractedLinkedIn *string        `json:"extracted_linkedin"`
	ExtractedSkills   datatypes.JSON `json:"extracted_skills"`
	YearsExperience   *float64       `json:"years_experience"`
	CareerLevel       *string        `json:"career_level"`
	// JobFitRatio is the parser's own 0-1 ratio, unrelated to Score.
	JobFitRatio    *float64       `json:"job_fit_ratio"`
	Last3Positions datatypes.JSON `json:"last_3_positions"`
	EducationLevel *string        `json:"education_level"`
	TotalSkills    *int           `json:"total_skills"`
	HardSkills     datatypes.JSON `json:"hard_skills"`
	SoftSkills     datatypes.JSON `json:"soft_skills"`
	TopKeywords    datatypes.JSON `json:"top_keywords"`
	TextPreview    *string        `gorm:"type:text" json:"text_preview"`
}

// Notification targets exactly one audience: Admin, EmployerID or CandidateID.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Title string `gorm:"not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`
	Read  bool   `gorm:"not null;default:false;index" json:"read"`

	Admin       bool  `gorm:"not null;default:false" json:"admin"`
	EmployerID  *uint `gorm:"index" json:"employer_id,omitempty"`
	CandidateID *uint `gorm:"index" json:"candidate_id,omitempty"`

	JobID *uint `json:"job_id,omitempty"`
	Job   *Job  `json:"job,omitempty"`
}

type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	ApplicationID uint      `gorm:"index" json:"application_id"`
	ActorID       uint      `json:"actor_id"`
	EventType     string    `json:"event_type"`
	Details       string    `gorm:"type:text" json:"details"`
}
