package services

import (
	"context"
	"fmt"
	"github.com/maxaizer/hh-ingest/internal/clients/hh"
	"github.com/maxaizer/hh-ingest/internal/entities"
	"github.com/maxaizer/hh-ingest/internal/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strconv"
	"strings"
)

var ErrUnknownRegion = errors.New("unknown region")

type areasClient interface {
	GetAreas(ctx context.Context) ([]hh.Area, error)
}

type regionLookup interface {
	GetIdByName(ctx context.Context, name string) (string, error)
}

type regionStore interface {
	Count(ctx context.Context) (int64, error)
	AddAll(ctx context.Context, regions []entities.Region) error
}

// RegionResolver turns the area of a query into an hh area id.
type RegionResolver struct {
	client      areasClient
	lookup      regionLookup
	store       regionStore
	defaultArea string
}

func NewRegionResolver(client areasClient, lookup regionLookup, store regionStore, defaultArea string) *RegionResolver {
	return &RegionResolver{client: client, lookup: lookup, store: store, defaultArea: defaultArea}
}

// Resolve returns a copy of the queries with numeric areas. Numeric areas are kept
// as they are, empty ones get the default area and names are looked up.
func (r *RegionResolver) Resolve(ctx context.Context, queries []entities.Query) ([]entities.Query, error) {

	needsLookup := lo.SomeBy(queries, func(q entities.Query) bool {
		area := strings.TrimSpace(q.Area)
		return area != "" && !isNumeric(area)
	})
	if needsLookup {
		if err := r.ensureRegions(ctx); err != nil {
			return nil, err
		}
	}

	resolved := make([]entities.Query, 0, len(queries))
	for _, query := range queries {
		area, err := r.resolveArea(ctx, query.Area)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeInput).Errorf("query %q: %v", query.Text, err)
			return nil, err
		}
		resolved = append(resolved, entities.Query{Text: query.Text, Area: area})
	}
	return resolved, nil
}

func (r *RegionResolver) resolveArea(ctx context.Context, area string) (string, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return r.defaultArea, nil
	}
	if isNumeric(area) {
		return area, nil
	}

	id, err := r.lookup.GetIdByName(ctx, area)
	if err != nil {
		return "", fmt.Errorf("look up region %q: %w", area, err)
	}
	if id == "" {
		return "", errors.Wrapf(ErrUnknownRegion, "%q", area)
	}
	return id, nil
}

func (r *RegionResolver) ensureRegions(ctx context.Context) error {
	count, err := r.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count regions: %w", err)
	}
	if count > 0 {
		return nil
	}

	areas, err := r.client.GetAreas(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).Errorf("failed to get areas: %v", err)
		return err
	}

	regions := lo.Map(areas, func(a hh.Area, _ int) entities.Region {
		return entities.NewRegion(a.ID, a.ParentID, a.Name)
	})
	if err = r.store.AddAll(ctx, regions); err != nil {
		return fmt.Errorf("save regions: %w", err)
	}

	log.Infof("loaded %d regions", len(regions))
	return nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
