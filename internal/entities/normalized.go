package entities

// UnspecifiedCurrency marks a vacancy published without a salary block.
const UnspecifiedCurrency = "n/n"

type Salary struct {
	From     int
	To       int
	Currency string
}

type EmployerInfo struct {
	Name string
	URL  string
}

// NormalizedVacancy is a detail record flattened into the values the store needs.
type NormalizedVacancy struct {
	ExternalID  int64
	Title       string
	Skills      []string
	City        string
	Employer    EmployerInfo
	Salary      Salary
	Description string
	CreatedDate string
}
