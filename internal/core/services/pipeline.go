package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/todoscout/internal/artifacts"
)

// Stage is one resumable step of the pipeline. Probe inspects the stage's
// outputs on disk without side effects; Run produces them.
type Stage interface {
	Name() string
	Outputs() []string
	Probe() (artifacts.Status, error)
	Run(ctx context.Context) error
}

// Pipeline runs stages in order, skipping any whose outputs already probe
// as complete, so an interrupted run picks up where it stopped. A corrupt
// artifact stops the pipeline instead of being silently rebuilt.
type Pipeline struct {
	Stages []Stage
	Log    zerolog.Logger
}

// Run executes the pipeline. Each invocation is tagged with a fresh run
// identifier so interleaved log streams stay attributable.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := p.Log.With().Str("run_id", runID).Logger()
	start := time.Now()
	log.Info().Int("stages", len(p.Stages)).Msg("pipeline starting")

	for _, stage := range p.Stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		status, probeErr := stage.Probe()
		switch status {
		case artifacts.StatusReady:
			log.Info().
				Str("stage", stage.Name()).
				Strs("outputs", stage.Outputs()).
				Msg("outputs already present; skipping stage")
			continue
		case artifacts.StatusCorrupt:
			log.Error().
				Str("stage", stage.Name()).
				Err(probeErr).
				Msg("artifact is corrupt; refusing to continue")
			return fmt.Errorf("stage %s: %w", stage.Name(), probeErr)
		}

		stageStart := time.Now()
		log.Info().Str("stage", stage.Name()).Msg("stage starting")
		if err := stage.Run(ctx); err != nil {
			log.Error().
				Str("stage", stage.Name()).
				Dur("elapsed", time.Since(stageStart)).
				Err(err).
				Msg("stage failed")
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		log.Info().
			Str("stage", stage.Name()).
			Dur("elapsed", time.Since(stageStart)).
			Msg("stage finished")
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("pipeline finished")
	return nil
}
