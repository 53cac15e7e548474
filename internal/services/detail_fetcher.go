package services

import (
	"context"
	"github.com/maxaizer/hh-ingest/internal/clients/hh"
	"github.com/maxaizer/hh-ingest/internal/metrics"
	"time"
)

const DefaultDetailDelay = 300 * time.Millisecond

type vacancyClient interface {
	GetVacancyByURL(ctx context.Context, url string) (hh.Vacancy, error)
}

type DetailFetcher struct {
	client vacancyClient
	delay  time.Duration
	pause  pauseFunc
}

func NewDetailFetcher(client vacancyClient, delay time.Duration) *DetailFetcher {
	return &DetailFetcher{client: client, delay: delay, pause: sleep}
}

// FetchDetail fetches one vacancy and then waits the courtesy delay, whatever the
// outcome. It never retries.
func (f *DetailFetcher) FetchDetail(ctx context.Context, reference string) (hh.Vacancy, error) {

	start := time.Now()
	vacancy, err := f.client.GetVacancyByURL(ctx, reference)
	metrics.StepDuration.WithLabelValues("detail").Observe(time.Since(start).Seconds())

	if pauseErr := f.pause(ctx, f.delay); pauseErr != nil && err == nil {
		err = pauseErr
	}

	if err != nil {
		return hh.Vacancy{}, err
	}
	return vacancy, nil
}
