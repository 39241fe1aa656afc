package digest

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/jira-digest/internal/domain"
)

// Fetcher collects the tickets a digest is built from.
type Fetcher struct {
	gateway     Gateway
	logger      *zap.Logger
	concurrency int
}

// NewFetcher constructs a Fetcher. concurrency bounds parallel roster searches.
func NewFetcher(gateway Gateway, logger *zap.Logger, concurrency int) *Fetcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Fetcher{gateway: gateway, logger: logger, concurrency: concurrency}
}

// FetchResult is the merged ticket list plus any absorbed roster failures.
type FetchResult struct {
	Tickets  []domain.Ticket
	Warnings []domain.Warning
}

// Fetch returns recently updated tickets. Without identities it searches for
// the caller and any error is returned. With identities each one is searched
// independently, tickets are tagged with the identity they were fetched for,
// and a failed search only contributes a warning. The merged roster list is
// stably sorted by origin identity.
func (f *Fetcher) Fetch(ctx context.Context, identities []domain.Identity, lookbackDays int) (FetchResult, error) {
	if len(identities) == 0 {
		tickets, err := f.gateway.SearchTickets(ctx, "", lookbackDays)
		if err != nil {
			return FetchResult{}, err
		}
		f.logger.Debug("fetched tickets for current user", zap.Int("count", len(tickets)))
		return FetchResult{Tickets: tickets}, nil
	}

	perIdentity := make([][]domain.Ticket, len(identities))
	failures := make([]error, len(identities))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, identity := range identities {
		g.Go(func() error {
			tickets, err := f.gateway.SearchTickets(ctx, identity, lookbackDays)
			if err != nil {
				failures[i] = err
				return nil
			}
			for j := range tickets {
				tickets[j].OriginIdentity = identity
			}
			perIdentity[i] = tickets
			return nil
		})
	}
	_ = g.Wait()

	var result FetchResult
	for i, identity := range identities {
		if err := failures[i]; err != nil {
			f.logger.Warn("ticket search failed for identity",
				zap.String("identity", string(identity)),
				zap.Error(err),
			)
			result.Warnings = append(result.Warnings, domain.Warning{
				Unit:    domain.UnitRosterSearch,
				Key:     string(identity),
				Message: err.Error(),
			})
			continue
		}
		result.Tickets = append(result.Tickets, perIdentity[i]...)
	}

	sort.SliceStable(result.Tickets, func(a, b int) bool {
		return result.Tickets[a].OriginIdentity < result.Tickets[b].OriginIdentity
	})
	return result, nil
}
