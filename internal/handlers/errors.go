package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireflow/internal/services"
)

var messages = map[string]string{
	services.CodeMissingFields:        "Missing required fields: jobId and employerId are required",
	services.CodeEmployerMismatch:     "Invalid employer for this job",
	services.CodeFileTooLarge:         "File size must be less than 5MB",
	services.CodeUnsupportedFileType:  "Only PDF and DOCX files are allowed",
	services.CodeNoResumeOnFile:       "No resume found. Please upload a resume.",
	services.CodeInvalidStatus:        "Invalid newStatus value",
	services.CodeInvalidSort:          "Invalid sort value, use createdAt_desc, score_desc or address_asc",
	services.CodeDuplicateApplication: "You have already applied to this job",
	services.CodeStaleStatus:          "Application status changed concurrently, reload and retry",
	services.CodeJob:                  "Job not found",
	services.CodeApplication:          "Application not found",
	services.CodeCandidate:            "Candidate not found",
	services.CodeNotOwner:             "Unauthorized",
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindAuthorization:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict, services.KindInvalidTransition:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes the client-facing form of err. Anything that is not an
// expected client error becomes an opaque 500.
func respondError(c *gin.Context, err error) {
	var e *services.Error
	if !errors.As(err, &e) || statusFor(e.Kind) == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	msg, ok := messages[e.Code]
	if !ok {
		msg = e.Error()
	}
	if e.Kind == services.KindInvalidTransition {
		msg = "Invalid status transition: " + e.Code
	}
	c.JSON(statusFor(e.Kind), gin.H{
		"success": false,
		"error":   msg,
		"kind":    e.Kind.String(),
		"code":    e.Code,
	})
}
