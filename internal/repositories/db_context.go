package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/hh-ingest/internal/entities"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"strings"
)

type DbContext struct {
	DB *gorm.DB
}

// NewDbContext opens postgres for postgres:// and postgresql:// URLs and sqlite otherwise.
// A sqlite connection string may be a bare file path or sqlite:///path.
func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(dialectorFor(connectionString), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func dialectorFor(connectionString string) gorm.Dialector {
	switch {
	case strings.HasPrefix(connectionString, "postgres://"), strings.HasPrefix(connectionString, "postgresql://"):
		return postgres.Open(connectionString)
	case strings.HasPrefix(connectionString, "sqlite:///"):
		return sqlite.Open(strings.TrimPrefix(connectionString, "sqlite:///"))
	default:
		return sqlite.Open(connectionString)
	}
}

func (c *DbContext) Migrate() error {
	models := []struct {
		name  string
		model any
	}{
		{"City", entities.City{}},
		{"Employer", entities.Employer{}},
		{"KeySkill", entities.KeySkill{}},
		{"Vacancy", entities.Vacancy{}},
		{"VacancySkill", entities.VacancySkill{}},
		{"Region", entities.Region{}},
	}

	for _, m := range models {
		if err := c.DB.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to migrate %s entity: %w", m.name, err)
		}
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
