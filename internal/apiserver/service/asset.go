package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amoylab/shopinspector/internal/apiserver/cache"
	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"
	"github.com/amoylab/shopinspector/internal/storage"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrCodeSize = 256

type AssetService struct {
	repos         *repository.Repositories
	storage       storage.Storage
	logger        *zap.Logger
	observer      Observer
	qrCache       *cache.Cache
	publicBaseURL string
}

func newAssetService(d Deps, logger *zap.Logger) *AssetService {
	return &AssetService{
		repos:         d.Repos,
		storage:       d.Storage,
		logger:        logger,
		observer:      d.Observer,
		qrCache:       d.Cache,
		publicBaseURL: strings.TrimRight(d.PublicBaseURL, "/"),
	}
}

func (s *AssetService) List(ctx context.Context, q dto.ListQuery) (*database.Page[database.Asset], error) {
	return s.repos.Assets.List(ctx, q.PageIndex, q.PageSize, q.Search)
}

func (s *AssetService) Get(ctx context.Context, id int) (*database.Asset, error) {
	a, err := s.repos.Assets.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("Asset", int64(id))
	}
	return a, err
}

func (s *AssetService) validate(ctx context.Context, req dto.AssetRequest, excludeID int) (*database.Asset, error) {
	var (
		a   database.Asset
		err error
	)
	if a.AssetName, err = text("assetName", req.AssetName, 2, 150); err != nil {
		return nil, err
	}
	if a.AssetLocation, err = text("assetLocation", req.AssetLocation, 0, 150); err != nil {
		return nil, err
	}
	if a.AssetCode, err = text("assetCode", req.AssetCode, 0, 50); err != nil {
		return nil, err
	}
	if a.Department, err = text("department", req.Department, 0, 100); err != nil {
		return nil, err
	}
	if err := positiveID("assetTypeId", req.AssetTypeID); err != nil {
		return nil, err
	}
	if _, err := s.repos.AssetTypes.GetByID(ctx, req.AssetTypeID); err != nil {
		if repository.IsNotFound(err) {
			return nil, errorx.ValidationError("assetTypeId", req.AssetTypeID, "assetTypeId refers to an asset type that does not exist")
		}
		return nil, err
	}
	a.AssetTypeID = req.AssetTypeID

	if a.AssetCode != "" {
		taken, err := s.repos.Assets.ExistsByCode(ctx, a.AssetCode, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errorx.ConflictError("Asset", "assetCode", a.AssetCode)
		}
	}
	return &a, nil
}

func (s *AssetService) Create(ctx context.Context, req dto.AssetRequest, stamp Stamp) (*database.Asset, error) {
	var out *database.Asset
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		a, err := s.validate(ctx, req, 0)
		if err != nil {
			return err
		}
		a.Active = activeOr(req.Active, true)
		a.CreatedOn, a.CreatedBy = stamp.At, stamp.Actor
		if err := s.repos.Assets.Create(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("asset created", zap.Int("id", out.ID), zap.String("code", out.AssetCode), zap.String("actor", stamp.Actor))
	return out, nil
}

func (s *AssetService) Update(ctx context.Context, id int, req dto.AssetRequest) (*database.Asset, error) {
	var out *database.Asset
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		a, err := s.validate(ctx, req, id)
		if err != nil {
			return err
		}
		existing.AssetName, existing.AssetLocation, existing.AssetCode = a.AssetName, a.AssetLocation, a.AssetCode
		existing.AssetTypeID, existing.Department = a.AssetTypeID, a.Department
		existing.Active = activeOr(req.Active, existing.Active)
		existing.AssetType = nil
		if err := s.repos.Assets.Update(ctx, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	return out, err
}

// DeleteAsset removes the asset together with its inspections, their answers and photos, and its
// checklist bindings. Assets have no guarded mode.
func (s *AssetService) DeleteAsset(ctx context.Context, id int) error {
	if id <= 0 {
		return errorx.ValidationError("id", id, "asset id must be positive")
	}

	err := s.repos.Assets.Delete(ctx, id)
	switch {
	case err == nil:
		s.forgetQRCode(ctx, id)
		s.observer.DeleteDone("asset", dto.DeleteModeForce, string(DeleteDeleted))
		s.logger.Warn("asset deleted with all dependents", zap.Int("id", id))
		return nil
	case repository.IsNotFound(err):
		s.observer.DeleteDone("asset", dto.DeleteModeForce, string(DeleteNotFound))
		return errorx.NotFoundError("Asset", int64(id))
	case errors.Is(err, repository.ErrVanished):
		s.observer.DeleteDone("asset", dto.DeleteModeForce, outcomeFailed)
		return errorx.ErrConcurrentModification.WithMessage(fmt.Sprintf("Asset with ID %d was removed by another request", id))
	default:
		s.observer.DeleteDone("asset", dto.DeleteModeForce, outcomeFailed)
		s.logger.Error("failed to delete asset", zap.Int("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete asset with ID %d: %w", id, err)
	}
}

// InspectionURL is the public page a QR code on the asset points to
func (s *AssetService) InspectionURL(id int) string {
	return fmt.Sprintf("%s/inspect/%d", s.publicBaseURL, id)
}

// AssetQRCode renders the public inspection link of the asset as a PNG and stores it under qrcodes/.
// Rendered images are kept in the QR cache when one is configured.
func (s *AssetService) AssetQRCode(ctx context.Context, id int) ([]byte, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	url := s.InspectionURL(id)
	if s.qrCache != nil {
		if png, layer, ok := s.qrCache.Get(ctx, qrCacheKey(url)); ok {
			s.logger.Debug("QR code cache hit", zap.Int("asset_id", id), zap.String("layer", string(layer)))
			return png, nil
		}
	}

	png, err := qrcode.Encode(url, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code for asset %d: %w", id, err)
	}
	name := fmt.Sprintf("qrcodes/asset_%d.png", id)
	if _, err := s.storage.Save(ctx, name, bytes.NewReader(png)); err != nil {
		// the image is still returned; only the cached copy is lost
		s.logger.Error("failed to store QR code", zap.Int("asset_id", id), zap.String("name", name), zap.Error(err))
	}
	if s.qrCache != nil {
		if err := s.qrCache.Set(ctx, qrCacheKey(url), png); err != nil {
			s.logger.Warn("failed to cache QR code", zap.Int("asset_id", id), zap.Error(err))
		}
	}
	return png, nil
}

func qrCacheKey(url string) string { return "qrcode:" + url }

func (s *AssetService) forgetQRCode(ctx context.Context, id int) {
	if err := s.storage.Delete(ctx, fmt.Sprintf("qrcodes/asset_%d.png", id)); err != nil {
		s.logger.Warn("failed to remove stored QR code", zap.Int("asset_id", id), zap.Error(err))
	}
	if s.qrCache == nil {
		return
	}
	if err := s.qrCache.Delete(ctx, qrCacheKey(s.InspectionURL(id))); err != nil {
		s.logger.Warn("failed to evict QR code", zap.Int("asset_id", id), zap.Error(err))
	}
}
