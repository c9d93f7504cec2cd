package commands

import (
	"context"

	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/core/ports"

	"golang.org/x/sync/errgroup"
)

// resolveCandidates resolves every rider concurrently, at most limit lookups at a time,
// and returns the candidates in the same order as riderNumbers.
// The resolver never fails, so an error here means it returned an unusable location.
func resolveCandidates(
	ctx context.Context,
	resolver ports.LocationResolver,
	riderNumbers []string,
	limit int,
) ([]rider.Candidate, error) {
	candidates := make([]rider.Candidate, len(riderNumbers))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, number := range riderNumbers {
		g.Go(func() error {
			c, err := rider.NewCandidate(number, resolver.Resolve(gctx, number))
			if err != nil {
				return err
			}
			candidates[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return candidates, nil
}
