package services

import (
	"context"
	"fmt"
	"github.com/maxaizer/hh-ingest/internal/clients/hh"
	"github.com/maxaizer/hh-ingest/internal/entities"
	"github.com/maxaizer/hh-ingest/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
)

const (
	DefaultPageSize  = 100
	DefaultMaxPages  = 20
	DefaultPageDelay = 500 * time.Millisecond
)

type vacanciesPageClient interface {
	GetVacanciesPage(ctx context.Context, parameters hh.SearchParameters) (hh.VacanciesPage, error)
}

type ListingFetcher struct {
	client    vacanciesPageClient
	pageSize  int
	maxPages  int
	pageDelay time.Duration
	pause     pauseFunc
}

func NewListingFetcher(client vacanciesPageClient, pageSize, maxPages int, pageDelay time.Duration) *ListingFetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &ListingFetcher{
		client:    client,
		pageSize:  pageSize,
		maxPages:  maxPages,
		pageDelay: pageDelay,
		pause:     sleep,
	}
}

// FetchReferences walks the search pages of one query and returns the vacancy
// references in page order. It stops on the last page reported by hh, on the
// page cap, or on the search depth limit.
func (f *ListingFetcher) FetchReferences(ctx context.Context, query entities.Query) ([]string, error) {

	var references []string

	for page := 0; page < f.maxPages; page++ {

		params := hh.SearchParameters{
			Text:    query.Text,
			AreaID:  query.Area,
			Page:    page,
			PerPage: f.pageSize,
		}

		start := time.Now()
		result, err := f.client.GetVacanciesPage(ctx, params)
		metrics.StepDuration.WithLabelValues("listing_page").Observe(time.Since(start).Seconds())

		if err != nil {
			if errors.Is(err, hh.ErrTooDeepPagination) {
				log.Warningf("too deep pagination for %q, page: %d, per page: %d", query.Text, page, f.pageSize)
				break
			}
			return nil, fmt.Errorf("fetch page %d of %q: %w", page, query.Text, err)
		}

		for _, item := range result.Items {
			references = append(references, item.URL)
		}
		log.Debugf("page %d/%d of %q: %d items", page+1, result.Pages, query.Text, len(result.Items))

		if result.Pages-page <= 1 || page+1 >= f.maxPages {
			break
		}

		if err = f.pause(ctx, f.pageDelay); err != nil {
			return nil, err
		}
	}

	return references, nil
}
