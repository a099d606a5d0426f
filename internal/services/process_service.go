package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"timber-backend/internal/cache"
	"timber-backend/internal/models"
	"timber-backend/internal/repositories"
)

const processCacheTTL = 10 * time.Minute

// ProcessService manages the production processes of an organisation and
// previews their package numbering
type ProcessService struct {
	Repo       repositories.ProcessStore
	Production repositories.ProductionStore
}

func NewProcessService(repo repositories.ProcessStore, production repositories.ProductionStore) *ProcessService {
	return &ProcessService{Repo: repo, Production: production}
}

func (s *ProcessService) List(ctx context.Context, actor Actor) ([]*models.Process, error) {
	if err := actor.requireSession(); err != nil {
		return nil, err
	}

	key := cache.ProcessListKey(actor.OrganisationID)
	var processes []*models.Process
	if cache.GetJSON(ctx, key, &processes) {
		return processes, nil
	}

	processes, err := s.Repo.ListProcesses(ctx, actor.OrganisationID)
	if err != nil {
		return nil, storeError(KindQueryFailed, "failed to list processes", err)
	}
	if processes == nil {
		processes = []*models.Process{}
	}
	cache.SetJSON(ctx, key, processes, processCacheTTL)
	return processes, nil
}

func (s *ProcessService) Create(ctx context.Context, actor Actor, req *models.CreateProcessRequest) (*models.Process, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}
	code, err := NormalizeProcessCode(req.Code)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(KindValidation, "process name is required")
	}

	p := &models.Process{
		OrganisationID: actor.OrganisationID,
		Code:           code,
		Name:           name,
		IsActive:       true,
	}
	if err := s.Repo.CreateProcess(ctx, p); err != nil {
		return nil, storeError(KindUpdateFailed, fmt.Sprintf("failed to create process %s", code), err)
	}
	s.refreshCache(ctx, actor.OrganisationID)

	zap.L().Info("process created", zap.Int("org_id", actor.OrganisationID), zap.String("code", code))
	return p, nil
}

// Deactivate hides a process from new drafts; existing entries keep it
func (s *ProcessService) Deactivate(ctx context.Context, actor Actor, processID int) error {
	if err := actor.requireAdmin(); err != nil {
		return err
	}
	if err := s.Repo.DeactivateProcess(ctx, actor.OrganisationID, processID); err != nil {
		return storeError(KindUpdateFailed, fmt.Sprintf("failed to deactivate process %d", processID), err)
	}
	s.refreshCache(ctx, actor.OrganisationID)
	return nil
}

// PreviewNextNumber shows the package number the next allocation for the
// process would hand out. Nothing is reserved.
func (s *ProcessService) PreviewNextNumber(ctx context.Context, actor Actor, processID int) (*models.NextNumberPreview, error) {
	if err := actor.requireSession(); err != nil {
		return nil, err
	}
	p, err := s.Repo.GetProcess(ctx, actor.OrganisationID, processID)
	if err != nil {
		return nil, storeError(KindQueryFailed, fmt.Sprintf("process %d not found", processID), err)
	}
	seq, err := previewNextNumber(ctx, s.Production, actor.OrganisationID, p.Code)
	if err != nil {
		return nil, err
	}
	return &models.NextNumberPreview{
		ProcessID:   p.ID,
		ProcessCode: p.Code,
		Next:        FormatPackageNumber(p.Code, seq),
		Sequence:    seq,
	}, nil
}

// refreshCache drops the cached process list and refills it in the background
func (s *ProcessService) refreshCache(ctx context.Context, orgID int) {
	cache.InvalidateProcessCaches(ctx, orgID)
	cache.PreWarmKey(cache.ProcessListKey(orgID), func(ctx context.Context) ([]byte, error) {
		processes, err := s.Repo.ListProcesses(ctx, orgID)
		if err != nil {
			return nil, err
		}
		if processes == nil {
			processes = []*models.Process{}
		}
		return json.Marshal(processes)
	}, processCacheTTL)
}
