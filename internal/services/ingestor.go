package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-ingest/internal/clients/hh"
	"github.com/maxaizer/hh-ingest/internal/entities"
	"github.com/maxaizer/hh-ingest/internal/events"
	"github.com/maxaizer/hh-ingest/internal/logger"
	"github.com/maxaizer/hh-ingest/internal/metrics"
	log "github.com/sirupsen/logrus"
	"time"
)

type listingFetcher interface {
	FetchReferences(ctx context.Context, query entities.Query) ([]string, error)
}

type detailFetcher interface {
	FetchDetail(ctx context.Context, reference string) (hh.Vacancy, error)
}

type vacancyRepository interface {
	FindIDByExternalID(ctx context.Context, externalID int64) (int64, bool, error)
	Insert(ctx context.Context, vacancy entities.Vacancy) error
}

type dimensionRepository interface {
	Table() string
	Ensure(ctx context.Context, name string, extra ...any) (int64, bool, error)
}

type vacancySkillRepository interface {
	Exists(ctx context.Context, vacancyID, skillID int64) (bool, error)
	Insert(ctx context.Context, vacancyID, skillID int64) error
}

type Repositories struct {
	Vacancies     vacancyRepository
	Skills        dimensionRepository
	Cities        dimensionRepository
	Employers     dimensionRepository
	VacancySkills vacancySkillRepository
}

func (r Repositories) validate() error {
	if r.Vacancies == nil || r.Skills == nil || r.Cities == nil || r.Employers == nil || r.VacancySkills == nil {
		return errors.New("all repositories are required")
	}
	return nil
}

type Summary struct {
	Queries    int
	References int
	Inserted   int
	Skipped    int
	Failed     int
}

func (s *Summary) add(other Summary) {
	s.Queries += other.Queries
	s.References += other.References
	s.Inserted += other.Inserted
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeInserted
	outcomeFailed
)

// listingError halts one query but not the run.
type listingError struct {
	err error
}

func (e listingError) Error() string { return e.err.Error() }
func (e listingError) Unwrap() error { return e.err }

// Ingestor runs queries one after another and persists every vacancy it has not
// seen before. Everything is sequential: one query, one reference, one statement.
type Ingestor struct {
	listing      listingFetcher
	details      detailFetcher
	repositories Repositories
	bus          EventBus.Bus
}

func NewIngestor(listing listingFetcher, details detailFetcher, repositories Repositories, bus EventBus.Bus) (*Ingestor, error) {
	if listing == nil || details == nil {
		return nil, errors.New("listing and detail fetchers are required")
	}
	if err := repositories.validate(); err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	return &Ingestor{listing: listing, details: details, repositories: repositories, bus: bus}, nil
}

// Run processes the queries in order. A failed listing ends only its own query;
// database errors and cancellation end the whole run. Listing errors are joined
// into the returned error.
func (i *Ingestor) Run(ctx context.Context, queries []entities.Query) (Summary, error) {

	startTime := time.Now()
	log.Infof("running ingestion of %d queries", len(queries))

	var total Summary
	var queryErrs []error

	for _, query := range queries {
		summary, err := i.IngestQuery(ctx, query)
		total.add(summary)

		if err == nil {
			continue
		}

		var le listingError
		if !errors.As(err, &le) || ctx.Err() != nil {
			return total, err
		}

		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).Errorf("query %q halted: %v", query.Text, err)
		queryErrs = append(queryErrs, err)
	}

	executionTime := time.Since(startTime)
	metrics.RunDuration.Observe(executionTime.Seconds())
	log.Infof("ingestion ended after %v: %d queries, %d references, %d inserted, %d skipped, %d failed",
		executionTime, total.Queries, total.References, total.Inserted, total.Skipped, total.Failed)

	return total, errors.Join(queryErrs...)
}

// IngestQuery fetches every reference of one query and ingests them in order.
func (i *Ingestor) IngestQuery(ctx context.Context, query entities.Query) (Summary, error) {

	log.Infof("---> %s (area %s)", query.Text, query.Area)
	summary := Summary{Queries: 1}

	references, err := i.listing.FetchReferences(ctx, query)
	if err != nil {
		return summary, listingError{err: err}
	}
	summary.References = len(references)

	for _, reference := range references {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		result, err := i.ingestReference(ctx, query, reference)
		if err != nil {
			return summary, err
		}

		switch result {
		case outcomeInserted:
			summary.Inserted++
			metrics.ReferencesCounter.WithLabelValues(metrics.OutcomeInserted).Inc()
		case outcomeSkipped:
			summary.Skipped++
			metrics.ReferencesCounter.WithLabelValues(metrics.OutcomeSkipped).Inc()
		case outcomeFailed:
			summary.Failed++
			metrics.ReferencesCounter.WithLabelValues(metrics.OutcomeFailed).Inc()
		}
	}

	log.Infof("fetched %d references for %q: %d new, %d known, %d failed",
		summary.References, query.Text, summary.Inserted, summary.Skipped, summary.Failed)
	return summary, nil
}

// ingestReference walks one reference through check, fetch, normalize, dimension
// upserts, vacancy insert and skill linking. A bad item is reported as failed;
// only store errors and cancellation are returned.
func (i *Ingestor) ingestReference(ctx context.Context, query entities.Query, reference string) (outcome, error) {

	externalID, err := hh.ExternalIDFromURL(reference)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).Error(err)
		return outcomeFailed, nil
	}

	_, found, err := i.repositories.Vacancies.FindIDByExternalID(ctx, externalID)
	if err != nil {
		return outcomeFailed, fmt.Errorf("check vacancy %d: %w", externalID, err)
	}
	if found {
		return outcomeSkipped, nil
	}

	detail, err := i.details.FetchDetail(ctx, reference)
	if err != nil {
		if ctx.Err() != nil {
			return outcomeFailed, ctx.Err()
		}
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).Errorf("failed to get vacancy %d: %v", externalID, err)
		return outcomeFailed, nil
	}

	vacancy, err := Normalize(detail)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeNormalize).Errorf("failed to normalize vacancy %d: %v", externalID, err)
		return outcomeFailed, nil
	}

	start := time.Now()
	inserted, err := i.store(ctx, vacancy)
	metrics.StepDuration.WithLabelValues("store").Observe(time.Since(start).Seconds())
	if err != nil {
		return outcomeFailed, err
	}
	if !inserted {
		return outcomeSkipped, nil
	}

	i.bus.Publish(events.VacancyStoredTopic, events.VacancyStored{
		Query:      query.Text,
		ExternalID: vacancy.ExternalID,
		Title:      vacancy.Title,
		Skills:     len(vacancy.Skills),
	})
	return outcomeInserted, nil
}

// store upserts dimensions before the vacancy and the vacancy before its links.
// Statements are not wrapped in a transaction; every step re-checks natural keys,
// so an interrupted store is completed by the next run.
func (i *Ingestor) store(ctx context.Context, vacancy entities.NormalizedVacancy) (bool, error) {

	skillIDs := make([]int64, 0, len(vacancy.Skills))
	for _, skill := range vacancy.Skills {
		id, err := i.ensure(ctx, i.repositories.Skills, skill)
		if err != nil {
			return false, err
		}
		skillIDs = append(skillIDs, id)
	}

	cityID, err := i.ensure(ctx, i.repositories.Cities, vacancy.City)
	if err != nil {
		return false, err
	}

	employerID, err := i.ensure(ctx, i.repositories.Employers, vacancy.Employer.Name, vacancy.Employer.URL)
	if err != nil {
		return false, err
	}

	inserted, err := i.insertVacancy(ctx, vacancy, cityID, employerID)
	if err != nil {
		return false, err
	}

	vacancyID, found, err := i.repositories.Vacancies.FindIDByExternalID(ctx, vacancy.ExternalID)
	if err != nil {
		return false, fmt.Errorf("resolve vacancy %d: %w", vacancy.ExternalID, err)
	}
	if !found {
		return false, fmt.Errorf("vacancy %d is missing right after insert", vacancy.ExternalID)
	}

	for _, skillID := range skillIDs {
		if err = i.link(ctx, vacancyID, skillID); err != nil {
			return false, err
		}
	}

	return inserted, nil
}

func (i *Ingestor) ensure(ctx context.Context, repo dimensionRepository, name string, extra ...any) (int64, error) {
	id, inserted, err := repo.Ensure(ctx, name, extra...)
	if err != nil {
		return 0, fmt.Errorf("upsert %s %q: %w", repo.Table(), name, err)
	}
	if inserted {
		metrics.InsertedRowsCounter.WithLabelValues(repo.Table()).Inc()
	}
	return id, nil
}

func (i *Ingestor) insertVacancy(ctx context.Context, vacancy entities.NormalizedVacancy, cityID, employerID int64) (bool, error) {

	_, found, err := i.repositories.Vacancies.FindIDByExternalID(ctx, vacancy.ExternalID)
	if err != nil {
		return false, fmt.Errorf("re-check vacancy %d: %w", vacancy.ExternalID, err)
	}
	if found {
		return false, nil
	}

	err = i.repositories.Vacancies.Insert(ctx, entities.Vacancy{
		HhID:           vacancy.ExternalID,
		Name:           vacancy.Title,
		SalaryFrom:     vacancy.Salary.From,
		SalaryTo:       vacancy.Salary.To,
		SalaryCurrency: vacancy.Salary.Currency,
		Description:    vacancy.Description,
		DateCreate:     vacancy.CreatedDate,
		CityID:         cityID,
		EmployerID:     employerID,
	})
	if err != nil {
		return false, fmt.Errorf("insert vacancy %d: %w", vacancy.ExternalID, err)
	}

	metrics.InsertedRowsCounter.WithLabelValues("vacancy").Inc()
	return true, nil
}

func (i *Ingestor) link(ctx context.Context, vacancyID, skillID int64) error {
	exists, err := i.repositories.VacancySkills.Exists(ctx, vacancyID, skillID)
	if err != nil {
		return fmt.Errorf("check vacancy_skill (%d, %d): %w", vacancyID, skillID, err)
	}
	if exists {
		return nil
	}

	if err = i.repositories.VacancySkills.Insert(ctx, vacancyID, skillID); err != nil {
		return fmt.Errorf("insert vacancy_skill (%d, %d): %w", vacancyID, skillID, err)
	}
	metrics.InsertedRowsCounter.WithLabelValues("vacancy_skill").Inc()
	return nil
}
