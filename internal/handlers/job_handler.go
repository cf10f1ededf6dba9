package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireflow/internal/services"
)

type JobHandler struct {
	Jobs *services.JobService
}

func NewJobHandler(jobs *services.JobService) *JobHandler {
	return &JobHandler{Jobs: jobs}
}

// GetBySlug is the public GET /jobs/:slug endpoint that job pages and the
// apply form load from.
func (h *JobHandler) GetBySlug(c *gin.Context) {
	job, err := h.Jobs.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          job.ID,
		"slug":        job.Slug,
		"title":       job.Title,
		"description": job.Description,
		"employerId":  job.EmployerID,
	})
}
