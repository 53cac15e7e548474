package events

var VacancyStoredTopic = "VacancyStoredEvent"

// VacancyStored is published once a vacancy row has been inserted.
type VacancyStored struct {
	Query      string
	ExternalID int64
	Title      string
	Skills     int
}
