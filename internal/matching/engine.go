// Package matching ranks available donors for a blood request into three
// tiers: exact group in the same city, compatible group in the same city,
// and exact group in other cities.
package matching

import (
	"context"
	"fmt"
	"time"

	"bloodlink/internal/metrics"
	"bloodlink/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultOtherCityLimit caps the exact-group, other-city tier.
const DefaultOtherCityLimit = 10

const MsgNoMatches = "No matching donors found currently"

// DonorFinder is the read side of the donor store the engine depends on.
type DonorFinder interface {
	FindAvailable(ctx context.Context, q types.DonorQuery) ([]*types.Donor, error)
}

type Engine struct {
	donors         DonorFinder
	logger         logrus.FieldLogger
	metrics        *metrics.Metrics
	otherCityLimit uint64
}

type Option func(*Engine)

func WithOtherCityLimit(limit uint64) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.otherCityLimit = limit
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func New(donors DonorFinder, logger logrus.FieldLogger, opts ...Option) *Engine {
	e := &Engine{
		donors:         donors,
		logger:         logger,
		otherCityLimit: DefaultOtherCityLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FindMatches computes all three tiers. Either every tier is computed or an
// error is returned; partial results are never returned.
func (e *Engine) FindMatches(ctx context.Context, group types.BloodGroup, city types.City) (*types.MatchResult, error) {
	started := time.Now()

	var exact, compatible, otherCity []*types.Donor

	// The tiers do not depend on each other at query time. Compatible donors
	// that are also exact matches are removed after all queries return.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		donors, err := e.donors.FindAvailable(gctx, types.DonorQuery{
			BloodGroups: []types.BloodGroup{group},
			City:        city,
		})
		if err != nil {
			return fmt.Errorf("find exact same city donors: %w", err)
		}
		exact = donors
		return nil
	})
	g.Go(func() error {
		donors, err := e.donors.FindAvailable(gctx, types.DonorQuery{
			BloodGroups: group.CompatibleDonors(),
			City:        city,
		})
		if err != nil {
			return fmt.Errorf("find compatible same city donors: %w", err)
		}
		compatible = donors
		return nil
	})
	g.Go(func() error {
		donors, err := e.donors.FindAvailable(gctx, types.DonorQuery{
			BloodGroups: []types.BloodGroup{group},
			City:        city,
			ExcludeCity: true,
			Limit:       e.otherCityLimit,
		})
		if err != nil {
			return fmt.Errorf("find exact other city donors: %w", err)
		}
		otherCity = donors
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	compatible = excludeDonors(compatible, exact)
	if uint64(len(otherCity)) > e.otherCityLimit {
		otherCity = otherCity[:e.otherCityLimit]
	}

	result := &types.MatchResult{
		MatchingDonors: types.MatchingDonors{
			ExactMatches:      label(exact, types.MatchTypeExactSameCity),
			CompatibleMatches: label(compatible, types.MatchTypeCompatibleSameCity),
			OtherCityMatches:  label(otherCity, types.MatchTypeExactOtherCity),
		},
	}
	result.TotalMatches = len(result.MatchingDonors.ExactMatches) +
		len(result.MatchingDonors.CompatibleMatches) +
		len(result.MatchingDonors.OtherCityMatches)
	result.Message = summarize(result.MatchingDonors)

	e.metrics.ObserveMatch(result, time.Since(started))
	e.logger.WithFields(logrus.Fields{
		"blood_group": group,
		"city":        city,
		"exact":       len(result.MatchingDonors.ExactMatches),
		"compatible":  len(result.MatchingDonors.CompatibleMatches),
		"other_city":  len(result.MatchingDonors.OtherCityMatches),
	}).Debug("computed donor matches")

	return result, nil
}

// excludeDonors returns the donors in from whose id does not appear in
// exclude, preserving order.
func excludeDonors(from, exclude []*types.Donor) []*types.Donor {
	if len(exclude) == 0 {
		return from
	}

	seen := make(map[string]struct{}, len(exclude))
	for _, d := range exclude {
		seen[d.ID] = struct{}{}
	}

	out := make([]*types.Donor, 0, len(from))
	for _, d := range from {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		out = append(out, d)
	}
	return out
}

func label(donors []*types.Donor, matchType types.MatchType) []*types.MatchedDonor {
	out := make([]*types.MatchedDonor, 0, len(donors))
	for _, d := range donors {
		out = append(out, &types.MatchedDonor{
			Donor:     *d,
			MatchType: matchType,
			Priority:  matchType.Priority(),
		})
	}
	return out
}

// summarize reports on the highest priority non-empty tier only.
func summarize(m types.MatchingDonors) string {
	switch {
	case len(m.ExactMatches) > 0:
		return fmt.Sprintf("Found %d exact matches in your city!", len(m.ExactMatches))
	case len(m.CompatibleMatches) > 0:
		return fmt.Sprintf("Found %d compatible donors in your city!", len(m.CompatibleMatches))
	case len(m.OtherCityMatches) > 0:
		return fmt.Sprintf("Found %d matches in other cities", len(m.OtherCityMatches))
	default:
		return MsgNoMatches
	}
}
