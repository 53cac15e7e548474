package services

import (
	"fmt"
	"github.com/maxaizer/hh-ingest/internal/clients/hh"
	"github.com/maxaizer/hh-ingest/internal/entities"
	"github.com/samber/lo"
	"strconv"
	"strings"
)

const createdDateLength = len("2006-01-02")

// Normalize flattens a detail record. It has no side effects.
func Normalize(vacancy hh.Vacancy) (entities.NormalizedVacancy, error) {

	externalID, err := strconv.ParseInt(strings.TrimSpace(vacancy.ID), 10, 64)
	if err != nil {
		return entities.NormalizedVacancy{}, fmt.Errorf("vacancy id %q is not numeric", vacancy.ID)
	}

	if vacancy.Area == nil || vacancy.Area.Name == "" {
		return entities.NormalizedVacancy{}, fmt.Errorf("vacancy %d has no area", externalID)
	}

	if vacancy.Employer == nil || vacancy.Employer.Name == "" {
		return entities.NormalizedVacancy{}, fmt.Errorf("vacancy %d has no employer", externalID)
	}

	salary, err := normalizeSalary(vacancy.Salary)
	if err != nil {
		return entities.NormalizedVacancy{}, fmt.Errorf("vacancy %d: %w", externalID, err)
	}

	if len(vacancy.CreatedAt) < createdDateLength {
		return entities.NormalizedVacancy{}, fmt.Errorf("vacancy %d has malformed created_at %q", externalID, vacancy.CreatedAt)
	}

	skills := lo.Uniq(lo.FilterMap(vacancy.KeySkills, func(skill hh.KeySkill, _ int) (string, bool) {
		name := strings.TrimSpace(skill.Name)
		return name, name != ""
	}))

	return entities.NormalizedVacancy{
		ExternalID: externalID,
		Title:      vacancy.Name,
		Skills:     skills,
		City:       vacancy.Area.Name,
		Employer: entities.EmployerInfo{
			Name: vacancy.Employer.Name,
			URL:  vacancy.Employer.URL,
		},
		Salary:      salary,
		Description: vacancy.Description,
		CreatedDate: vacancy.CreatedAt[:createdDateLength],
	}, nil
}

func normalizeSalary(salary *hh.Salary) (entities.Salary, error) {
	if salary == nil {
		return entities.Salary{Currency: entities.UnspecifiedCurrency}, nil
	}

	if salary.Currency == nil || *salary.Currency == "" {
		return entities.Salary{}, fmt.Errorf("salary without currency")
	}

	return entities.Salary{
		From:     lo.FromPtr(salary.From),
		To:       lo.FromPtr(salary.To),
		Currency: *salary.Currency,
	}, nil
}
