package server

import (
	"net/http"

	"bloodlink/pkg/types"

	"golang.org/x/sync/errgroup"
)

// livesPerRequest is the number of lives a fulfilled request is credited with.
const livesPerRequest = 3

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats types.Statistics

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		n, err := s.donors.CountDonors(ctx)
		stats.TotalDonors = n
		return storeFailure("count donors", err)
	})
	g.Go(func() error {
		n, err := s.donors.CountCities(ctx)
		stats.CitiesCovered = n
		return storeFailure("count donor cities", err)
	})
	g.Go(func() error {
		n, err := s.recipients.CountRecipients(ctx)
		stats.TotalRequests = n
		return storeFailure("count recipient requests", err)
	})

	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	stats.TotalLivesSaved = stats.TotalRequests * livesPerRequest

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
