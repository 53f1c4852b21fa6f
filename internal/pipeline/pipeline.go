// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/segmatch/internal/cluster"
	"github.com/tomtom215/segmatch/internal/config"
	"github.com/tomtom215/segmatch/internal/etl"
	"github.com/tomtom215/segmatch/internal/features"
	"github.com/tomtom215/segmatch/internal/identity"
	"github.com/tomtom215/segmatch/internal/logging"
	"github.com/tomtom215/segmatch/internal/metrics"
	"github.com/tomtom215/segmatch/internal/profile"
	"github.com/tomtom215/segmatch/internal/recommend"
	"github.com/tomtom215/segmatch/internal/table"
)

// Stage names beyond the ETL stages.
const (
	StageFeatures  = "features"
	StageCluster   = "cluster"
	StageProfile   = "profile"
	StageRecommend = "recommend"
	StageOutputs   = "outputs"
)

// Store is the persistence a run reads from and writes to.
// *database.DB satisfies it.
type Store interface {
	etl.Store
	WriteOutput(ctx context.Context, name string, rows [][]any) error
	Export(ctx context.Context, name, dir, format string) (string, error)
}

// Pipeline runs the full segmentation and recommendation flow.
// Runs are serialized; Run may be called from several goroutines.
type Pipeline struct {
	cfg    *config.Config
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	runMu sync.Mutex

	mu   sync.RWMutex
	last *Summary
}

// New creates a pipeline over store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.Config, store Store, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		store:  store,
		logger: logger.With().Str("component", "pipeline").Logger(),
		now:    time.Now,
	}
}

// Last returns the summary of the most recent run, or nil before the first.
func (p *Pipeline) Last() *Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// run carries the per-run state threaded through the stages.
type run struct {
	sum        *Summary
	logger     zerolog.Logger
	reconciler *identity.Reconciler
	key        string

	base      *table.Table
	matrix    *features.Matrix
	selection *cluster.Selection
	profile   *profile.Result
	generator *recommend.Generator
	recs      []recommend.Recommendation
}

// Run executes every stage in order. Cancellation and the configured run
// timeout are checked between stages. The returned Summary is non-nil even
// when the run fails.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	if p.cfg.Schedule.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Schedule.RunTimeout)
		defer cancel()
	}

	runID := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := p.logger.With().Str("run_id", runID).Logger()

	r := &run{
		sum:        &Summary{RunID: runID, StartedAt: p.now().UTC()},
		logger:     logger,
		reconciler: identity.NewReconciler(p.cfg.Identity.CanonicalKey, p.cfg.Identity.Candidates, logger),
	}
	r.key = r.reconciler.CanonicalKey()

	logger.Info().
		Str("input_dir", p.cfg.Input.Dir).
		Str("output_dir", p.cfg.Output.Dir).
		Msg("Pipeline run starting")

	err := p.execute(ctx, r)

	sum := r.sum
	sum.FinishedAt = p.now().UTC()
	sum.DurationMs = sum.FinishedAt.Sub(sum.StartedAt).Milliseconds()
	if err != nil {
		sum.Status = StatusFailed
		sum.Error = err.Error()
		sum.ErrorType = Classify(err)
		logger.Error().Err(err).Str("error_type", sum.ErrorType).Msg("Pipeline run failed")
	} else {
		sum.Status = StatusSuccess
		metrics.RecordRunSuccess(sum.FinishedAt)
		logger.Info().
			Int("customers", sum.Customers).
			Int64("duration_ms", sum.DurationMs).
			Msg("Pipeline run complete")
	}

	if p.cfg.Output.Summary {
		if path, werr := writeSummary(p.cfg.Output.Dir, sum); werr != nil {
			logger.Warn().Err(werr).Msg("Run summary not written")
			if err == nil {
				err = werr
			}
		} else {
			logger.Debug().Str("path", path).Msg("Run summary written")
		}
	}

	p.mu.Lock()
	p.last = sum
	p.mu.Unlock()
	return sum, err
}

func (p *Pipeline) execute(ctx context.Context, r *run) error {
	runner := etl.NewRunner(p.store, p.cfg.Input, r.reconciler, r.logger)

	for _, st := range runner.Stages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		rep, err := st.Run(ctx)
		p.observe(r, st.Name, start, rep, err)
		if err != nil {
			if stageAbort(err) {
				r.logger.Warn().Err(err).Str("stage", st.Name).Msg("Stage aborted; continuing with remaining stages")
				continue
			}
			return fmt.Errorf("stage %s: %w", st.Name, err)
		}
	}

	steps := []struct {
		name string
		fn   func(context.Context, *run) (*etl.Report, error)
	}{
		{etl.StageBase, func(ctx context.Context, r *run) (*etl.Report, error) {
			base, rep, err := runner.BuildBase(ctx)
			r.base = base
			return rep, err
		}},
		{StageFeatures, p.buildFeatures},
		{StageCluster, p.selectClusters},
		{StageProfile, p.profileClusters},
		{StageRecommend, p.recommend},
		{StageOutputs, p.writeOutputs},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		rep, err := step.fn(ctx, r)
		p.observe(r, step.name, start, rep, err)
		if err != nil {
			return fmt.Errorf("stage %s: %w", step.name, err)
		}
	}
	return nil
}

// observe records stage timing in metrics and in the run summary.
func (p *Pipeline) observe(r *run, stage string, start time.Time, rep *etl.Report, err error) {
	d := time.Since(start)
	class := Classify(err)
	if err != nil && class != metrics.ErrorTypeInternal {
		metrics.RecordStage(stage, d, nil)
		metrics.RecordStageError(stage, class)
	} else {
		metrics.RecordStage(stage, d, err)
	}

	res := StageResult{Name: stage, DurationMs: d.Milliseconds(), Report: rep, ErrorType: class}
	if err != nil {
		res.Error = err.Error()
	}
	r.sum.Stages = append(r.sum.Stages, res)

	r.logger.Debug().Str("stage", stage).Dur("duration", d).Msg("Stage finished")
}

func (p *Pipeline) referenceClock() func() time.Time {
	if ref := p.cfg.Features.ReferenceTime(); !ref.IsZero() {
		return func() time.Time { return ref }
	}
	return p.now
}

func (p *Pipeline) buildFeatures(_ context.Context, r *run) (*etl.Report, error) {
	b := features.NewBuilder(features.Config{
		Key:         r.key,
		Numeric:     p.cfg.Features.Numeric,
		Categorical: p.cfg.Features.Categorical,
		Now:         p.referenceClock(),
	}, r.logger)

	m, err := b.Build(r.base)
	if err != nil {
		return nil, err
	}
	r.matrix = m
	r.sum.Customers = m.NumRows()
	r.sum.Features = append([]string(nil), m.Names...)
	r.sum.DroppedFeatures = append([]string(nil), m.Dropped...)
	return nil, nil
}

func (p *Pipeline) selectClusters(ctx context.Context, r *run) (*etl.Report, error) {
	points, _ := features.Standardize(r.matrix)

	sel, err := cluster.NewSelector(cluster.Config{
		Candidates:    p.cfg.Cluster.Candidates,
		Seed:          p.cfg.Cluster.Seed,
		MaxIterations: p.cfg.Cluster.MaxIterations,
		Tolerance:     p.cfg.Cluster.Tolerance,
		Workers:       p.cfg.Cluster.Workers,
	}, r.logger).Select(ctx, points)
	if err != nil {
		return nil, err
	}
	r.selection = sel

	summary := &SelectionSummary{K: sel.K, Silhouette: sel.Score, Degenerate: sel.Degenerate}
	for _, c := range sel.Candidates {
		metrics.RecordCandidate(c.K, c.Score, c.Reason)
		if c.Skipped {
			metrics.RecordStageError(StageCluster, metrics.ErrorTypeInsufficientData)
		}
		summary.Candidates = append(summary.Candidates, CandidateSummary{
			K:          c.K,
			Silhouette: c.Score,
			Skipped:    c.Skipped,
			Reason:     c.Reason,
		})
	}
	r.sum.Selection = summary
	metrics.RecordSelection(sel.K, len(sel.Labels))
	return nil, nil
}

func (p *Pipeline) profileClusters(_ context.Context, r *run) (*etl.Report, error) {
	res, err := profile.NewProfiler(profile.Config{Key: r.key}, r.logger).
		Profile(r.matrix, r.selection.Labels, r.base)
	if err != nil {
		return nil, err
	}
	r.profile = res
	for _, c := range res.Profiles {
		r.sum.Clusters = append(r.sum.Clusters, ClusterSummary{Cluster: c.Cluster, Size: c.Size, Label: c.Label})
	}
	return nil, nil
}

// recommend reads held products from the treated customer table. Without it
// every recommendation list is empty.
func (p *Pipeline) recommend(ctx context.Context, r *run) (*etl.Report, error) {
	holdings := recommend.NewHoldings()
	customers, err := p.store.LoadTable(ctx, etl.TableCustomers)
	switch {
	case stageAbort(err):
		r.logger.Warn().Err(err).Msg("No product holdings available; recommendations will be empty")
	case err != nil:
		return nil, err
	default:
		if res := r.reconciler.Reconcile(customers); res.Keyed() {
			holdings = recommend.HoldingsFromTable(res.Table, r.key, p.cfg.Recommend.ProductColumn)
		}
	}
	if len(holdings.Customers()) == 0 {
		r.logger.Warn().
			Str("product_column", p.cfg.Recommend.ProductColumn).
			Msg("No customer holds any product")
	}

	assignment := recommend.NewAssignment(r.matrix.CustomerIDs, r.selection.Labels)
	r.generator = recommend.NewGenerator(assignment, holdings, recommend.Config{TopN: p.cfg.Recommend.TopN}, r.logger)
	r.recs = r.generator.RecommendAll(r.matrix.CustomerIDs)

	rs := &r.sum.Recommendations
	for _, rec := range r.recs {
		rs.Customers++
		rs.Products += len(rec.Products)
		if !rec.Clustered {
			rs.Unclustered++
		}
		if len(rec.Products) == 0 {
			rs.Empty++
		}
	}
	metrics.RecordRecommendations(rs.Products)
	return nil, nil
}
