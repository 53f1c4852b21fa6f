// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package cluster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrInsufficientData marks a candidate k that cannot be evaluated.
	ErrInsufficientData = errors.New("insufficient data for cluster count")

	// ErrNoCandidates is returned when no candidate k is configured.
	ErrNoCandidates = errors.New("no candidate cluster counts configured")

	// ErrNoPoints is returned when the input matrix is empty.
	ErrNoPoints = errors.New("no points to cluster")
)

// Skip reasons reported on CandidateResult.Reason.
const (
	ReasonTooFewDistinct = "too_few_distinct_points"
	ReasonSingleCluster  = "single_cluster"
)

// Config controls cluster-count selection.
type Config struct {
	// Candidates lists the cluster counts to evaluate, in tie-break order.
	Candidates []int

	// Seed is shared by every candidate run.
	Seed int64

	// MaxIterations bounds Lloyd iterations per run.
	MaxIterations int

	// Tolerance is the convergence threshold per run.
	Tolerance float64

	// Workers is the number of concurrent candidate evaluations. Values
	// below 2 evaluate sequentially.
	Workers int
}

// DefaultConfig returns the default selector configuration.
func DefaultConfig() Config {
	return Config{
		Candidates:    []int{3, 4, 5, 6},
		Seed:          42,
		MaxIterations: 300,
		Tolerance:     1e-4,
		Workers:       4,
	}
}

// CandidateResult is the evaluation of one candidate k.
type CandidateResult struct {
	K       int
	Score   float64
	Labels  []int
	Skipped bool
	Reason  string
	Err     error
}

// Selection is the chosen partition.
type Selection struct {
	K      int
	Score  float64
	Labels []int

	// Candidates holds every evaluated candidate in configured order.
	Candidates []CandidateResult

	// Degenerate is true when every candidate was skipped and all points
	// were placed in a single cluster.
	Degenerate bool
}

// Selector picks the cluster count with the highest silhouette score.
type Selector struct {
	cfg    Config
	logger zerolog.Logger
}

// NewSelector creates a selector.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSelector(cfg Config, logger zerolog.Logger) *Selector {
	return &Selector{
		cfg:    cfg,
		logger: logger.With().Str("component", "cluster").Logger(),
	}
}

// Select clusters points for every candidate k and keeps the strictly best
// silhouette score, earlier candidates winning ties. points must already be
// standardized and is only read.
func (s *Selector) Select(ctx context.Context, points [][]float64) (*Selection, error) {
	if len(s.cfg.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	distinct := countDistinct(points)
	results := make([]CandidateResult, len(s.cfg.Candidates))

	workers := s.cfg.Workers
	if workers > len(s.cfg.Candidates) {
		workers = len(s.cfg.Candidates)
	}
	if workers < 2 {
		for i, k := range s.cfg.Candidates {
			results[i] = s.evaluate(points, k, distinct)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = s.evaluate(points, s.cfg.Candidates[i], distinct)
				}
			}()
		}
		for i := range s.cfg.Candidates {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	sel := &Selection{K: -1, Score: math.Inf(-1), Candidates: results}
	for _, r := range results {
		if r.Skipped {
			s.logger.Warn().
				Int("k", r.K).
				Str("reason", r.Reason).
				Err(r.Err).
				Msg("cluster candidate skipped")
			continue
		}
		s.logger.Debug().Int("k", r.K).Float64("silhouette", r.Score).Msg("cluster candidate evaluated")
		if r.Score > sel.Score {
			sel.K = r.K
			sel.Score = r.Score
			sel.Labels = r.Labels
		}
	}

	if sel.K == -1 {
		s.logger.Warn().
			Int("points", len(points)).
			Int("distinct_points", distinct).
			Msg("every cluster candidate skipped, using a single cluster")
		sel.K = 1
		sel.Score = 0
		sel.Labels = make([]int, len(points))
		sel.Degenerate = true
		return sel, nil
	}

	s.logger.Info().
		Int("k", sel.K).
		Float64("silhouette", sel.Score).
		Msg("cluster count selected")
	return sel, nil
}

func (s *Selector) evaluate(points [][]float64, k, distinct int) CandidateResult {
	res := CandidateResult{K: k}
	if k < 2 || k > distinct {
		res.Skipped = true
		res.Reason = ReasonTooFewDistinct
		res.Err = fmt.Errorf("%w: k=%d, distinct points=%d", ErrInsufficientData, k, distinct)
		return res
	}

	km := KMeans(points, KMeansConfig{
		K:             k,
		Seed:          s.cfg.Seed,
		MaxIterations: s.cfg.MaxIterations,
		Tolerance:     s.cfg.Tolerance,
	})

	if populated(km.Labels) < 2 {
		res.Skipped = true
		res.Reason = ReasonSingleCluster
		res.Err = fmt.Errorf("%w: k=%d produced fewer than 2 clusters", ErrInsufficientData, k)
		return res
	}

	res.Labels = km.Labels
	res.Score = Silhouette(points, km.Labels)
	return res
}

func populated(labels []int) int {
	seen := make(map[int]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

func countDistinct(points [][]float64) int {
	seen := make(map[string]struct{}, len(points))
	var b strings.Builder
	for _, p := range points {
		b.Reset()
		for _, v := range p {
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			b.WriteByte(',')
		}
		seen[b.String()] = struct{}{}
	}
	return len(seen)
}
