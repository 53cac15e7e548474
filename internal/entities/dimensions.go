package entities

type City struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (City) TableName() string { return "city" }

type Employer struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
	URL  string `gorm:"column:url"`
}

func (Employer) TableName() string { return "employer" }

type KeySkill struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (KeySkill) TableName() string { return "keyskill" }
