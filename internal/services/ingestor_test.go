package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-ingest/internal/clients/hh"
	"github.com/maxaizer/hh-ingest/internal/entities"
	"github.com/maxaizer/hh-ingest/internal/repositories"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"path/filepath"
	"testing"
	"time"
)

var errListing = errors.New("listing is unavailable")

type fakeListing struct {
	references map[string][]string
	failing    map[string]bool
	calls      []string
}

func (f *fakeListing) FetchReferences(_ context.Context, query entities.Query) ([]string, error) {
	f.calls = append(f.calls, query.Text)
	if f.failing[query.Text] {
		return nil, errListing
	}
	return f.references[query.Text], nil
}

type fakeDetails struct {
	vacancies map[string]hh.Vacancy
	calls     map[string]int
}

func newFakeDetails(vacancies ...hh.Vacancy) *fakeDetails {
	f := &fakeDetails{vacancies: map[string]hh.Vacancy{}, calls: map[string]int{}}
	for _, v := range vacancies {
		f.vacancies[ref(v.ID)] = v
	}
	return f
}

func (f *fakeDetails) FetchDetail(_ context.Context, reference string) (hh.Vacancy, error) {
	f.calls[reference]++
	v, ok := f.vacancies[reference]
	if !ok {
		return hh.Vacancy{}, errors.New("404 Not Found")
	}
	return v, nil
}

func (f *fakeDetails) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type mockVacancyRepository struct {
	mock.Mock
}

func (m *mockVacancyRepository) FindIDByExternalID(ctx context.Context, externalID int64) (int64, bool, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockVacancyRepository) Insert(ctx context.Context, vacancy entities.Vacancy) error {
	return m.Called(ctx, vacancy).Error(0)
}

func ref(id string) string {
	return fmt.Sprintf("https://api.hh.ru/vacancies/%s?host=hh.ru", id)
}

func newTestRepositories(t *testing.T) (Repositories, *repositories.DbContext) {
	path := filepath.Join(t.TempDir(), "test.db")

	dbCtx, err := repositories.NewDbContext(path + "?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("could not create db context: %s", err)
	}
	t.Cleanup(func() { _ = dbCtx.Close() })

	if err = dbCtx.Migrate(); err != nil {
		t.Fatalf("could not migrate db: %s", err)
	}

	gateway := repositories.NewGateway(dbCtx.DB)
	return Repositories{
		Vacancies:     repositories.NewVacanciesRepository(gateway),
		Skills:        repositories.NewCachedDimension(repositories.NewSkillsRepository(gateway), time.Minute),
		Cities:        repositories.NewCachedDimension(repositories.NewCitiesRepository(gateway), time.Minute),
		Employers:     repositories.NewCachedDimension(repositories.NewEmployersRepository(gateway), time.Minute),
		VacancySkills: repositories.NewVacancySkillsRepository(gateway),
	}, dbCtx
}

func newTestIngestor(t *testing.T, listing listingFetcher, details detailFetcher, repos Repositories) *Ingestor {
	ingestor, err := NewIngestor(listing, details, repos, EventBus.New())
	if err != nil {
		t.Fatalf("could not create ingestor: %s", err)
	}
	return ingestor
}

func countRows(t *testing.T, dbCtx *repositories.DbContext, table string) int64 {
	var n int64
	if err := dbCtx.DB.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func tableCounts(t *testing.T, dbCtx *repositories.DbContext) map[string]int64 {
	counts := map[string]int64{}
	for _, table := range []string{"vacancy", "city", "employer", "keyskill", "vacancy_skill"} {
		counts[table] = countRows(t, dbCtx, table)
	}
	return counts
}

func Test_Ingestor_SecondRunChangesNothing(t *testing.T) {
	repos, dbCtx := newTestRepositories(t)
	listing := &fakeListing{references: map[string][]string{"golang": {ref("1"), ref("2")}}}
	details := newFakeDetails(testVacancy("1", "Go", "SQL"), testVacancy("2", "Go"))
	ingestor := newTestIngestor(t, listing, details, repos)
	queries := []entities.Query{{Text: "golang", Area: "113"}}

	summary, err := ingestor.Run(context.Background(), queries)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Queries: 1, References: 2, Inserted: 2}, summary)
	after := tableCounts(t, dbCtx)
	assert.Equal(t, map[string]int64{"vacancy": 2, "city": 1, "employer": 1, "keyskill": 2, "vacancy_skill": 3}, after)

	summary, err = ingestor.Run(context.Background(), queries)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Queries: 1, References: 2, Skipped: 2}, summary)
	assert.Equal(t, after, tableCounts(t, dbCtx))
	assert.Equal(t, 2, details.total())
}

func Test_Ingestor_PersistedVacanciesAreNotFetched(t *testing.T) {
	repos, _ := newTestRepositories(t)
	details := newFakeDetails(testVacancy("1"), testVacancy("2"), testVacancy("3"))

	first := newTestIngestor(t, &fakeListing{references: map[string][]string{"go": {ref("1")}}}, details, repos)
	_, err := first.Run(context.Background(), []entities.Query{{Text: "go"}})
	assert.NoError(t, err)

	second := newTestIngestor(t, &fakeListing{references: map[string][]string{"go": {ref("1"), ref("2"), ref("3")}}}, details, repos)
	summary, err := second.Run(context.Background(), []entities.Query{{Text: "go"}})
	assert.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, map[string]int{ref("1"): 1, ref("2"): 1, ref("3"): 1}, details.calls)
}

func Test_Ingestor_DuplicatesAcrossQueriesAreFetchedOnce(t *testing.T) {
	repos, dbCtx := newTestRepositories(t)
	listing := &fakeListing{references: map[string][]string{
		"golang":  {ref("1"), ref("2")},
		"backend": {ref("2"), ref("3")},
	}}
	details := newFakeDetails(testVacancy("1"), testVacancy("2"), testVacancy("3"))
	ingestor := newTestIngestor(t, listing, details, repos)

	summary, err := ingestor.Run(context.Background(), []entities.Query{{Text: "golang"}, {Text: "backend"}})

	assert.NoError(t, err)
	assert.Equal(t, Summary{Queries: 2, References: 4, Inserted: 3, Skipped: 1}, summary)
	assert.Equal(t, 1, details.calls[ref("2")])
	assert.Equal(t, int64(3), countRows(t, dbCtx, "vacancy"))
}

func Test_Ingestor_SharedSkillIsStoredOnce(t *testing.T) {
	repos, dbCtx := newTestRepositories(t)
	listing := &fakeListing{references: map[string][]string{"python": {ref("1"), ref("2")}}}
	details := newFakeDetails(testVacancy("1", "Python"), testVacancy("2", "Python"))
	ingestor := newTestIngestor(t, listing, details, repos)

	_, err := ingestor.Run(context.Background(), []entities.Query{{Text: "python"}})
	assert.NoError(t, err)

	assert.Equal(t, int64(1), countRows(t, dbCtx, "keyskill"))
	var links int64
	err = dbCtx.DB.Table("vacancy_skill").
		Joins("JOIN keyskill ON keyskill.id = vacancy_skill.keyskill_id").
		Where("keyskill.name = ?", "Python").
		Count(&links).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(2), links)
}

func Test_Ingestor_EveryReferenceResolves(t *testing.T) {
	repos, dbCtx := newTestRepositories(t)
	second := testVacancy("2", "Kafka")
	second.Area = &hh.NamedRef{Name: "Казань"}
	second.Employer = &hh.Employer{Name: "Initech", URL: "https://api.hh.ru/employers/7"}
	listing := &fakeListing{references: map[string][]string{"go": {ref("1"), ref("2")}}}
	ingestor := newTestIngestor(t, listing, newFakeDetails(testVacancy("1", "Go", "Kafka"), second), repos)

	_, err := ingestor.Run(context.Background(), []entities.Query{{Text: "go"}})
	assert.NoError(t, err)

	dangling := map[string]string{
		"vacancy.city_id":           "SELECT COUNT(*) FROM vacancy LEFT JOIN city ON city.id = vacancy.city_id WHERE city.id IS NULL",
		"vacancy.employer_id":       "SELECT COUNT(*) FROM vacancy LEFT JOIN employer ON employer.id = vacancy.employer_id WHERE employer.id IS NULL",
		"vacancy_skill.vacancy_id":  "SELECT COUNT(*) FROM vacancy_skill LEFT JOIN vacancy ON vacancy.id = vacancy_skill.vacancy_id WHERE vacancy.id IS NULL",
		"vacancy_skill.keyskill_id": "SELECT COUNT(*) FROM vacancy_skill LEFT JOIN keyskill ON keyskill.id = vacancy_skill.keyskill_id WHERE keyskill.id IS NULL",
	}
	for column, query := range dangling {
		var n int64
		assert.NoError(t, dbCtx.DB.Raw(query).Scan(&n).Error)
		assert.Zero(t, n, column)
	}

	var employerURL string
	assert.NoError(t, dbCtx.DB.Raw("SELECT url FROM employer WHERE name = ?", "Initech").Scan(&employerURL).Error)
	assert.Equal(t, "https://api.hh.ru/employers/7", employerURL)
	assert.Equal(t, int64(2), countRows(t, dbCtx, "city"))
	assert.Equal(t, int64(3), countRows(t, dbCtx, "vacancy_skill"))
}

func Test_Ingestor_StoresNormalizedValues(t *testing.T) {
	repos, dbCtx := newTestRepositories(t)
	listing := &fakeListing{references: map[string][]string{"go": {ref("44528998")}}}
	ingestor := newTestIngestor(t, listing, newFakeDetails(testVacancy("44528998")), repos)

	_, err := ingestor.Run(context.Background(), []entities.Query{{Text: "go"}})
	assert.NoError(t, err)

	var row struct {
		HhID           int64
		SalaryFrom     int
		SalaryTo       int
		SalaryCurrency string
		DateCreate     string
	}
	err = dbCtx.DB.Raw("SELECT hh_id, salary_from, salary_to, salary_currency, date_create FROM vacancy").Scan(&row).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(44528998), row.HhID)
	assert.Zero(t, row.SalaryFrom)
	assert.Zero(t, row.SalaryTo)
	assert.Equal(t, entities.UnspecifiedCurrency, row.SalaryCurrency)
	assert.Contains(t, row.DateCreate, "2023-05-01")
}

func Test_Ingestor_WhenDetailFails_ShouldSkipOnlyThatItem(t *testing.T) {
	repos, dbCtx := newTestRepositories(t)
	broken := testVacancy("3")
	broken.Salary = &hh.Salary{}
	listing := &fakeListing{references: map[string][]string{"go": {ref("1"), ref("2"), ref("3"), "not a reference"}}}
	// 2 is missing from the fake and fails to fetch, 3 fails to normalize
	ingestor := newTestIngestor(t, listing, newFakeDetails(testVacancy("1"), broken), repos)

	summary, err := ingestor.Run(context.Background(), []entities.Query{{Text: "go"}})

	assert.NoError(t, err)
	assert.Equal(t, Summary{Queries: 1, References: 4, Inserted: 1, Failed: 3}, summary)
	assert.Equal(t, int64(1), countRows(t, dbCtx, "vacancy"))
}

func Test_Ingestor_WhenListingFails_ShouldHaltOnlyThatQuery(t *testing.T) {
	repos, dbCtx := newTestRepositories(t)
	listing := &fakeListing{
		references: map[string][]string{"python": {ref("2")}},
		failing:    map[string]bool{"golang": true},
	}
	ingestor := newTestIngestor(t, listing, newFakeDetails(testVacancy("2")), repos)

	summary, err := ingestor.Run(context.Background(), []entities.Query{{Text: "golang"}, {Text: "python"}})

	assert.ErrorIs(t, err, errListing)
	assert.Equal(t, []string{"golang", "python"}, listing.calls)
	assert.Equal(t, Summary{Queries: 2, References: 1, Inserted: 1}, summary)
	assert.Equal(t, int64(1), countRows(t, dbCtx, "vacancy"))
}

func Test_Ingestor_WhenStoreFails_ShouldHaltRun(t *testing.T) {
	repos, _ := newTestRepositories(t)
	storeErr := errors.New("connection refused")
	vacancies := &mockVacancyRepository{}
	vacancies.On("FindIDByExternalID", mock.Anything, int64(1)).Return(int64(0), false, storeErr).Once()
	repos.Vacancies = vacancies

	listing := &fakeListing{references: map[string][]string{"golang": {ref("1"), ref("2")}, "python": {ref("3")}}}
	details := newFakeDetails(testVacancy("1"), testVacancy("2"), testVacancy("3"))
	ingestor := newTestIngestor(t, listing, details, repos)

	_, err := ingestor.Run(context.Background(), []entities.Query{{Text: "golang"}, {Text: "python"}})

	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, []string{"golang"}, listing.calls)
	assert.Zero(t, details.total())
	vacancies.AssertExpectations(t)
}

func Test_Ingestor_WhenCancelled_ShouldStop(t *testing.T) {
	repos, dbCtx := newTestRepositories(t)
	listing := &fakeListing{references: map[string][]string{"golang": {ref("1")}, "python": {ref("2")}}}
	ingestor := newTestIngestor(t, listing, newFakeDetails(testVacancy("1"), testVacancy("2")), repos)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ingestor.Run(ctx, []entities.Query{{Text: "golang"}, {Text: "python"}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"golang"}, listing.calls)
	assert.Zero(t, countRows(t, dbCtx, "vacancy"))
}

func Test_Ingestor_PublishesStoredVacancies(t *testing.T) {
	repos, _ := newTestRepositories(t)
	bus := EventBus.New()
	reporter, err := NewReporter(bus)
	assert.NoError(t, err)
	defer reporter.Close()

	listing := &fakeListing{references: map[string][]string{"golang": {ref("1"), ref("2")}, "python": {ref("2")}}}
	ingestor, err := NewIngestor(listing, newFakeDetails(testVacancy("1"), testVacancy("2")), repos, bus)
	assert.NoError(t, err)

	_, err = ingestor.Run(context.Background(), []entities.Query{{Text: "golang"}, {Text: "python"}})
	assert.NoError(t, err)

	assert.Equal(t, map[string]int{"golang": 2}, reporter.Flush())
	assert.Empty(t, reporter.Flush())
}

func Test_NewIngestor_WhenRepositoryMissing_ShouldFail(t *testing.T) {
	repos, _ := newTestRepositories(t)
	repos.VacancySkills = nil

	_, err := NewIngestor(&fakeListing{}, newFakeDetails(), repos, EventBus.New())
	assert.Error(t, err)
}
