package repositories

import (
	"context"
	"github.com/maxaizer/hh-ingest/internal/entities"
)

type Vacancies struct {
	gateway *Gateway
}

func NewVacanciesRepository(gateway *Gateway) *Vacancies {
	return &Vacancies{gateway: gateway}
}

// FindIDByExternalID returns the row id of the vacancy with the given hh id.
func (v *Vacancies) FindIDByExternalID(ctx context.Context, externalID int64) (int64, bool, error) {
	result, err := v.gateway.Execute(ctx, NewStatement("SELECT id FROM vacancy WHERE hh_id = ?", externalID))
	if err != nil || result.Empty() {
		return 0, false, err
	}

	id, err := result.Rows[0].Int64("id")
	return id, err == nil, err
}

func (v *Vacancies) Insert(ctx context.Context, vacancy entities.Vacancy) error {
	_, err := v.gateway.Execute(ctx, NewStatement(
		`INSERT INTO vacancy (hh_id, name, salary_from, salary_to, salary_currency, description, date_create, city_id, employer_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vacancy.HhID, vacancy.Name, vacancy.SalaryFrom, vacancy.SalaryTo, vacancy.SalaryCurrency,
		vacancy.Description, vacancy.DateCreate, vacancy.CityID, vacancy.EmployerID,
	))
	return err
}
