package repositories

import "context"

type VacancySkills struct {
	gateway *Gateway
}

func NewVacancySkillsRepository(gateway *Gateway) *VacancySkills {
	return &VacancySkills{gateway: gateway}
}

func (v *VacancySkills) Exists(ctx context.Context, vacancyID, skillID int64) (bool, error) {
	result, err := v.gateway.Execute(ctx, NewStatement(
		"SELECT vacancy_id FROM vacancy_skill WHERE vacancy_id = ? AND keyskill_id = ?", vacancyID, skillID))
	if err != nil {
		return false, err
	}
	return !result.Empty(), nil
}

func (v *VacancySkills) Insert(ctx context.Context, vacancyID, skillID int64) error {
	_, err := v.gateway.Execute(ctx, NewStatement(
		"INSERT INTO vacancy_skill (vacancy_id, keyskill_id) VALUES (?, ?)", vacancyID, skillID))
	return err
}
