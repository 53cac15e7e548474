package services

import (
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-ingest/internal/events"
	"github.com/maxaizer/hh-ingest/internal/metrics"
	log "github.com/sirupsen/logrus"
	"sync"
)

// Reporter listens for stored vacancies and keeps per-query totals of the current run.
type Reporter struct {
	bus    EventBus.Bus
	mu     sync.Mutex
	stored map[string]int
}

func NewReporter(bus EventBus.Bus) (*Reporter, error) {
	r := &Reporter{bus: bus, stored: make(map[string]int)}

	err := bus.Subscribe(events.VacancyStoredTopic, r.onVacancyStored)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reporter) Close() error {
	return r.bus.Unsubscribe(events.VacancyStoredTopic, r.onVacancyStored)
}

func (r *Reporter) onVacancyStored(event events.VacancyStored) {
	log.Infof("new vacancy %d: %s (%d skills)", event.ExternalID, event.Title, event.Skills)
	metrics.StoredVacanciesCounter.WithLabelValues(event.Query).Inc()

	r.mu.Lock()
	r.stored[event.Query]++
	r.mu.Unlock()
}

// Flush logs the totals gathered since the previous flush and resets them.
func (r *Reporter) Flush() map[string]int {
	r.mu.Lock()
	stored := r.stored
	r.stored = make(map[string]int)
	r.mu.Unlock()

	for query, count := range stored {
		log.Infof("%q: %d new vacancies", query, count)
	}
	return stored
}
