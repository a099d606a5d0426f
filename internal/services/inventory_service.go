package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"timber-backend/internal/cache"
	"timber-backend/internal/models"
	"timber-backend/internal/repositories"
)

const inventoryCacheTTL = 2 * time.Minute

// InventoryService reads and receives timber packages
type InventoryService struct {
	Repo repositories.InventoryStore
}

func NewInventoryService(repo repositories.InventoryStore) *InventoryService {
	return &InventoryService{Repo: repo}
}

func (s *InventoryService) List(ctx context.Context, actor Actor, filter models.PackageFilter) ([]*models.Package, error) {
	if err := actor.requireSession(); err != nil {
		return nil, err
	}
	switch filter.Status {
	case "", models.PackageStatusAvailable, models.PackageStatusConsumed:
	default:
		return nil, newError(KindValidation, "unknown package status %q", filter.Status)
	}
	filter.Prefix = strings.ToUpper(strings.TrimSpace(filter.Prefix))

	key := cache.PackageListKey(actor.OrganisationID, filter.Status, filter.Prefix)
	var packages []*models.Package
	if cache.GetJSON(ctx, key, &packages) {
		return packages, nil
	}

	packages, err := s.Repo.ListPackages(ctx, actor.OrganisationID, filter)
	if err != nil {
		return nil, storeError(KindQueryFailed, "failed to list packages", err)
	}
	if packages == nil {
		packages = []*models.Package{}
	}
	cache.SetJSON(ctx, key, packages, inventoryCacheTTL)
	return packages, nil
}

func (s *InventoryService) Get(ctx context.Context, actor Actor, packageID int) (*models.Package, error) {
	if err := actor.requireSession(); err != nil {
		return nil, err
	}
	p, err := s.Repo.GetPackage(ctx, actor.OrganisationID, packageID)
	if err != nil {
		return nil, storeError(KindQueryFailed, fmt.Sprintf("package %d not found", packageID), err)
	}
	return p, nil
}

// Receive adds a package to stock outside of production (purchase, opening stock)
func (s *InventoryService) Receive(ctx context.Context, actor Actor, req *models.CreatePackageRequest) (*models.Package, error) {
	if err := actor.requireEditor(); err != nil {
		return nil, err
	}
	number := strings.ToUpper(strings.TrimSpace(req.PackageNumber))
	if number == "" {
		return nil, newError(KindValidation, "package number is required")
	}
	if req.Pieces <= 0 {
		return nil, newError(KindValidation, "pieces must be positive")
	}
	if req.Thickness.IsNegative() || req.Width.IsNegative() || req.Length.IsNegative() || req.Volume.IsNegative() {
		return nil, newError(KindValidation, "dimensions and volume cannot be negative")
	}

	inUse, err := s.Repo.PackageNumberInUse(ctx, actor.OrganisationID, number)
	if err != nil {
		return nil, storeError(KindQueryFailed, fmt.Sprintf("failed to check package number %s", number), err)
	}
	if inUse {
		return nil, newError(KindValidation, "package number %s already exists", number)
	}

	p := &models.Package{
		OrganisationID: actor.OrganisationID,
		PackageNumber:  number,
		Species:        strings.TrimSpace(req.Species),
		Grade:          strings.TrimSpace(req.Grade),
		Thickness:      req.Thickness,
		Width:          req.Width,
		Length:         req.Length,
		Pieces:         req.Pieces,
		Volume:         req.Volume.Round(volumePlaces),
		Status:         models.PackageStatusAvailable,
	}
	if p.Volume.IsZero() {
		if !req.Thickness.IsPositive() || !req.Width.IsPositive() || !req.Length.IsPositive() {
			return nil, newError(KindValidation, "volume or all three dimensions are required")
		}
		p.Volume = ComputeVolume(req.Thickness, req.Width, req.Length, req.Pieces)
	}

	if err := s.Repo.CreatePackage(ctx, p); err != nil {
		se := storeError(KindUpdateFailed, fmt.Sprintf("failed to receive package %s", number), err)
		if se.Kind == KindConflict {
			se.Kind = KindValidation
			se.Message = fmt.Sprintf("package number %s already exists", number)
		}
		return nil, se
	}
	cache.InvalidateInventoryCaches(ctx, actor.OrganisationID)

	zap.L().Info("package received", zap.Int("org_id", actor.OrganisationID), zap.String("package", number))
	return p, nil
}
