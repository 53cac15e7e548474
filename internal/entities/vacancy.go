package entities

// Vacancy is the fact row. It is inserted once per distinct HhID and never updated.
type Vacancy struct {
	ID             int64    `gorm:"primaryKey"`
	HhID           int64    `gorm:"column:hh_id;uniqueIndex;not null"`
	Name           string   `gorm:"not null"`
	SalaryFrom     int      `gorm:"not null;default:0"`
	SalaryTo       int      `gorm:"not null;default:0"`
	SalaryCurrency string   `gorm:"size:8;not null"`
	Description    string   `gorm:"type:text"`
	DateCreate     string   `gorm:"type:date"`
	CityID         int64    `gorm:"not null"`
	City           City     `gorm:"constraint:OnDelete:RESTRICT"`
	EmployerID     int64    `gorm:"not null"`
	Employer       Employer `gorm:"constraint:OnDelete:RESTRICT"`
}

func (Vacancy) TableName() string { return "vacancy" }

// VacancySkill links a vacancy to one of its key skills; the pair is the primary key.
type VacancySkill struct {
	VacancyID  int64    `gorm:"primaryKey;autoIncrement:false"`
	Vacancy    Vacancy  `gorm:"constraint:OnDelete:CASCADE"`
	KeySkillID int64    `gorm:"column:keyskill_id;primaryKey;autoIncrement:false"`
	KeySkill   KeySkill `gorm:"foreignKey:KeySkillID;constraint:OnDelete:RESTRICT"`
}

func (VacancySkill) TableName() string { return "vacancy_skill" }
