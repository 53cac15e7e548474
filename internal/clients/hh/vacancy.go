package hh

// VacanciesPage is one page of the /vacancies search.
type VacanciesPage struct {
	Items   []VacancyPreview `json:"items"`
	Found   int              `json:"found"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

type VacancyPreview struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// URL is the API reference of the full record.
	URL          string `json:"url"`
	AlternateURL string `json:"alternate_url"`
}

// Vacancy is the full record returned by a vacancy reference. Nested blocks are
// pointers because hh returns null for them on some vacancies.
type Vacancy struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	KeySkills   []KeySkill `json:"key_skills"`
	Area        *NamedRef  `json:"area"`
	Employer    *Employer  `json:"employer"`
	Salary      *Salary    `json:"salary"`
	CreatedAt   string     `json:"created_at"`
	PublishedAt string     `json:"published_at"`
}

type KeySkill struct {
	Name string `json:"name"`
}

type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Employer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	AlternateURL string `json:"alternate_url"`
}

type Salary struct {
	From     *int    `json:"from"`
	To       *int    `json:"to"`
	Currency *string `json:"currency"`
	Gross    *bool   `json:"gross"`
}
