package services

import (
	"cmp"
	"context"
	"slices"

	"github.com/justsurfingit/hireflow/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ApplicationSort orders applications inside each job group.
type ApplicationSort string

const (
	SortCreatedDesc ApplicationSort = "createdAt_desc"
	SortScoreDesc   ApplicationSort = "score_desc"
	SortAddressAsc  ApplicationSort = "address_asc"
)

// ParseApplicationSort maps the sort query value. Empty means newest first.
func ParseApplicationSort(s string) (ApplicationSort, error) {
	switch st := ApplicationSort(s); st {
	case "":
		return SortCreatedDesc, nil
	case SortCreatedDesc, SortScoreDesc, SortAddressAsc:
		return st, nil
	}
	return "", validationError(CodeInvalidSort)
}

// JobApplications is one job with the applications received for it.
type JobApplications struct {
	Job          models.Job
	Applications []models.Application
}

// GroupedForEmployer lists the employer's applications grouped by job, jobs in
// id order and applications ordered by sortBy. Ties keep newest first.
func (s *ApplicationService) GroupedForEmployer(ctx context.Context, employerID uint, sortBy ApplicationSort) ([]JobApplications, error) {
	apps, err := s.ListForEmployer(ctx, employerID)
	if err != nil {
		return nil, err
	}

	index := make(map[uint]int)
	var groups []JobApplications
	for _, a := range apps {
		i, ok := index[a.JobID]
		if !ok {
			i = len(groups)
			index[a.JobID] = i
			groups = append(groups, JobApplications{Job: a.Job})
		}
		groups[i].Applications = append(groups[i].Applications, a)
	}
	slices.SortFunc(groups, func(a, b JobApplications) int { return cmp.Compare(a.Job.ID, b.Job.ID) })

	for i := range groups {
		sortApplications(groups[i].Applications, sortBy)
	}
	return groups, nil
}

// sortApplications sorts in place. apps must already be newest first.
func sortApplications(apps []models.Application, sortBy ApplicationSort) {
	switch sortBy {
	case SortScoreDesc:
		slices.SortStableFunc(apps, func(a, b models.Application) int {
			return cmp.Compare(scoreOf(b), scoreOf(a))
		})
	case SortAddressAsc:
		col := collate.New(language.Und)
		slices.SortStableFunc(apps, func(a, b models.Application) int {
			return col.CompareString(addressOf(a), addressOf(b))
		})
	}
}

// scoreOf treats a missing score as zero.
func scoreOf(a models.Application) int {
	if a.Score == nil {
		return 0
	}
	return *a.Score
}

func addressOf(a models.Application) string {
	if a.Candidate == nil {
		return ""
	}
	return a.Candidate.Address
}
