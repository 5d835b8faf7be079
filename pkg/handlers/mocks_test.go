package handlers

import (
	"context"

	"github.com/collegeroi/roi-engine/pkg/models"
	"github.com/collegeroi/roi-engine/pkg/repositories"
	"github.com/collegeroi/roi-engine/pkg/services"
)

// mockScenarioService is a configurable mock for all handler tests. It
// captures the requests it receives so tests can assert on the decoded form.
type mockScenarioService struct {
	result   *models.ScenarioResult
	outcomes []models.ScenarioOutcome
	versions map[string]string

	computeErr  error
	compareErr  error
	versionsErr error

	lastRequest *models.ScenarioRequest
	lastBatch   []models.ScenarioRequest
}

var _ services.ScenarioService = (*mockScenarioService)(nil)

func (m *mockScenarioService) Compute(ctx context.Context, req *models.ScenarioRequest) (*models.ScenarioResult, error) {
	m.lastRequest = req
	if m.computeErr != nil {
		return nil, m.computeErr
	}
	if m.result != nil {
		return m.result, nil
	}
	return &models.ScenarioResult{
		Label:           req.Label,
		InstitutionName: "Test State University",
		ProgramName:     "Computer Science",
		Warnings:        []string{},
		DatasetVersions: map[string]string{},
	}, nil
}

func (m *mockScenarioService) Compare(ctx context.Context, reqs []models.ScenarioRequest) ([]models.ScenarioOutcome, error) {
	m.lastBatch = reqs
	if m.compareErr != nil {
		return nil, m.compareErr
	}
	if m.outcomes != nil {
		return m.outcomes, nil
	}
	outcomes := make([]models.ScenarioOutcome, len(reqs))
	for i := range reqs {
		outcomes[i] = models.ScenarioOutcome{Result: &models.ScenarioResult{Label: reqs[i].Label}}
	}
	return outcomes, nil
}

func (m *mockScenarioService) DatasetVersions(ctx context.Context) (map[string]string, error) {
	if m.versionsErr != nil {
		return nil, m.versionsErr
	}
	if m.versions != nil {
		return m.versions, nil
	}
	return map[string]string{}, nil
}

// failingInstitutions wraps a working institution repository and fails every
// search.
type failingInstitutions struct {
	repositories.InstitutionRepository
	err error
}

func (f *failingInstitutions) Search(ctx context.Context, state, query string, limit int) ([]*models.Institution, error) {
	return nil, f.err
}

// browseStore bundles the memory store into the reference-store shape the
// handlers consume.
func browseStore(mem *repositories.MemoryStore) services.ReferenceStore {
	return services.ReferenceStore{
		Institutions: mem,
		Programs:     mem,
		Regions:      mem,
		Housing:      mem,
		Datasets:     mem,
	}
}
