package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/models"
	"github.com/collegeroi/roi-engine/pkg/workerpool"
)

// Compare evaluates up to the configured number of scenarios concurrently
// and returns one outcome per scenario in input order. A scenario's own hard
// error fills its slot; it never aborts the siblings. More scenarios than
// the cap is a request-level validation error, not a silent truncation.
func (s *scenarioService) Compare(ctx context.Context, reqs []models.ScenarioRequest) ([]models.ScenarioOutcome, error) {
	if len(reqs) == 0 {
		return nil, apperrors.NewValidation("scenarios", "at least one scenario is required")
	}
	if limit := s.assumptions.MaxCompareScenarios; len(reqs) > limit {
		return nil, apperrors.NewValidation("scenarios", "at most %d scenarios can be compared, got %d", limit, len(reqs))
	}

	tasks := make([]workerpool.Task[*models.ScenarioResult], len(reqs))
	for i := range reqs {
		req := &reqs[i]
		id := req.Label
		if id == "" {
			id = fmt.Sprintf("scenario-%d", i+1)
		}
		tasks[i] = workerpool.Task[*models.ScenarioResult]{
			ID: id,
			Run: func(ctx context.Context) (*models.ScenarioResult, error) {
				return s.Compute(ctx, req)
			},
		}
	}

	results := workerpool.Run(ctx, s.pool, tasks)

	outcomes := make([]models.ScenarioOutcome, len(results))
	for i, res := range results {
		if res.Err != nil {
			outcomes[i] = models.ScenarioOutcome{Error: classifyOutcomeError(res.Err)}
			continue
		}
		outcomes[i] = models.ScenarioOutcome{Result: res.Value}
	}
	return outcomes, nil
}

// classifyOutcomeError maps a hard error to the per-slot error shape.
// Internal failures keep their detail in the logs, not the response.
func classifyOutcomeError(err error) *models.OutcomeError {
	switch {
	case apperrors.IsValidation(err):
		return &models.OutcomeError{Code: "validation_error", Message: err.Error()}
	case errors.Is(err, apperrors.ErrNotFound):
		return &models.OutcomeError{Code: "not_found", Message: err.Error()}
	default:
		return &models.OutcomeError{Code: "internal_error", Message: "scenario computation failed"}
	}
}
