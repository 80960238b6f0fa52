// Package pipeline runs one batch cycle: load the bridge registry, fetch
// the feed, resolve and derive a status per bridge, then emit the
// snapshot and the transition-history writes.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/brugmelding/brugwacht/internal/diagnostics"
	"github.com/brugmelding/brugwacht/internal/feed"
	"github.com/brugmelding/brugwacht/internal/history"
	"github.com/brugmelding/brugwacht/internal/log"
	"github.com/brugmelding/brugwacht/internal/matching"
	"github.com/brugmelding/brugwacht/internal/metrics"
	"github.com/brugmelding/brugwacht/internal/registry"
	"github.com/brugmelding/brugwacht/internal/snapshot"
	"github.com/brugmelding/brugwacht/internal/types"
	"github.com/brugmelding/brugwacht/pkg/config"
	"github.com/google/uuid"
)

// Pipeline wires the per-run components together
type Pipeline struct {
	registry        *registry.Loader
	feed            *feed.Client
	writer          *snapshot.Writer
	transitions     *history.Logger
	metrics         *metrics.Metrics
	mode            matching.Mode
	missingIDPolicy string
	missingIDFile   string
	nowFn           func() time.Time
}

// New creates a pipeline from the loaded configuration. transitions may
// be a disabled logger when the store is unreachable.
func New(cfg *config.ConfigData, transitions *history.Logger, m *metrics.Metrics) *Pipeline {
	runLog := diagnostics.NewRunLog(cfg.App.RunLogFile)

	return &Pipeline{
		registry:        registry.NewLoader(cfg.App.BridgesFile, runLog),
		feed:            feed.NewClient(cfg.Feed.URL, cfg.Feed.Timeout),
		writer:          snapshot.NewWriter(cfg.App.SnapshotFile),
		transitions:     transitions,
		metrics:         m,
		mode:            matching.Mode(cfg.Feed.MatchingMode),
		missingIDPolicy: cfg.Feed.MissingIDPolicy,
		missingIDFile:   cfg.App.MissingIDFile,
		nowFn:           time.Now,
	}
}

// Run executes one batch cycle. Only registry or feed unavailability is
// fatal; store failures and malformed items degrade per item.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := p.nowFn()
	log.Infow("starting pipeline run", "run_id", runID, "mode", p.mode)

	err := p.run(ctx, runID)
	elapsed := p.nowFn().Sub(started)

	if p.metrics != nil {
		p.metrics.RunDuration.Observe(elapsed.Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		p.metrics.RunsTotal.WithLabelValues(outcome).Inc()
	}

	if err != nil {
		log.Errorw("pipeline run failed", "run_id", runID, "elapsed", elapsed, "error", err)
		return err
	}
	log.Infow("pipeline run complete", "run_id", runID, "elapsed", elapsed)
	return nil
}

func (p *Pipeline) run(ctx context.Context, runID string) error {
	now := p.nowFn()

	bridges, err := p.registry.Load()
	if err != nil {
		return err
	}

	situations, err := p.feed.Fetch(ctx)
	if err != nil {
		return err
	}

	index := matching.BuildIndex(situations, p.mode, now)

	var missing *diagnostics.MissingIDLog
	if p.mode == matching.ModeCorrelationID && p.missingIDPolicy == "log" {
		missing = diagnostics.LoadMissingIDs(p.missingIDFile)
	}

	records := make([]types.SnapshotRecord, 0, len(bridges))
	statusCounts := make(map[string]int)

	for _, bridge := range bridges {
		resolution := index.Resolve(bridge)

		derived := resolution.Derived
		if !resolution.Found {
			derived = matching.DefaultClosed(now)
			if missing != nil {
				for _, id := range bridge.CorrelationIDs {
					missing.Remember(id, bridge)
				}
			}
		}

		statusCounts[derived.Status]++
		records = append(records, buildRecord(bridge, derived))

		if err := p.transitions.Record(bridge.ID, derived.Status, derived.StatusMoment); err != nil {
			if p.metrics != nil {
				p.metrics.TransitionErrors.Inc()
			}
			log.Errorw("could not record status transition", "run_id", runID, "bridge", bridge.ID, "error", err)
		}
	}

	if err := p.writer.Write(records); err != nil {
		return fmt.Errorf("error writing snapshot: %v", err)
	}

	if missing != nil {
		if err := missing.Save(); err != nil {
			log.Warnf("could not save missing-identifier log: %v", err)
		}
	}

	if p.metrics != nil {
		p.metrics.BridgesTotal.Set(float64(len(bridges)))
		p.metrics.SituationsRetained.Set(float64(index.Retained()))
		p.metrics.SituationsSkipped.Set(float64(index.Skipped()))
		for _, status := range []string{types.StatusOpen, types.StatusPlanned, types.StatusClosed} {
			p.metrics.StatusTotal.WithLabelValues(status).Set(float64(statusCounts[status]))
		}
	}

	log.Infow("derived bridge statuses",
		"run_id", runID,
		"bridges", len(bridges),
		"open", statusCounts[types.StatusOpen],
		"gepland", statusCounts[types.StatusPlanned],
		"dicht", statusCounts[types.StatusClosed])
	return nil
}

// buildRecord assembles the snapshot record for one bridge
func buildRecord(bridge types.Bridge, derived types.DerivedStatus) types.SnapshotRecord {
	correlationIDs := bridge.CorrelationIDs
	if correlationIDs == nil {
		correlationIDs = []string{}
	}

	return types.SnapshotRecord{
		ID:                   bridge.ID,
		Latitude:             bridge.Latitude,
		Longitude:            bridge.Longitude,
		SituationCurrent:     derived.OperatorAction,
		SituationPredicted:   derived.Probability,
		Version:              derived.Version,
		StartRaw:             derived.StartRaw,
		EndRaw:               derived.EndRaw,
		ValidityStatus:       derived.ValidityStatus,
		OperatorActionStatus: derived.OperatorAction,
		Planning:             derived.Planning,
		Name:                 bridge.Name,
		Region:               bridge.Region,
		Town:                 bridge.Town,
		CorrelationIDs:       correlationIDs,
		Status:               derived.Status,
		Open:                 derived.Open,
	}
}
