package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SweepResult counts what one orphaned photo sweep did
type SweepResult struct {
	Scanned int `json:"scanned"`
	Removed int `json:"removed"`
	Recent  int `json:"recent"`
}

func (r SweepResult) Summary() map[string]any {
	return map[string]any{"scanned": r.Scanned, "removed": r.Removed, "recent": r.Recent}
}

// SweepOrphanPhotos removes uploaded photo files that no inspection references any more, as left
// behind by forced deletes. Files younger than grace are kept so in-flight submissions are not raced.
func (s *InspectionService) SweepOrphanPhotos(ctx context.Context, grace time.Duration) (SweepResult, error) {
	var res SweepResult
	names, err := s.storage.List(ctx, photoDir)
	if err != nil {
		return res, fmt.Errorf("failed to list %s: %w", photoDir, err)
	}

	cutoff := s.now().Add(-grace)
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		res.Scanned++
		rel := photoDir + "/" + name
		file, err := s.storage.Path(rel)
		if err != nil {
			continue
		}
		info, err := os.Stat(file)
		if err != nil {
			s.logger.Warn("failed to stat photo", zap.String("name", rel), zap.Error(err))
			continue
		}
		if info.ModTime().After(cutoff) {
			res.Recent++
			continue
		}
		candidates = append(candidates, "/"+rel)
	}
	if len(candidates) == 0 {
		return res, nil
	}

	referenced, err := s.repos.Photos.Referenced(ctx, candidates)
	if err != nil {
		return res, err
	}

	var errs []error
	for _, p := range candidates {
		if referenced[p] {
			continue
		}
		if err := s.storage.Delete(ctx, p[1:]); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", p, err))
			continue
		}
		res.Removed++
	}
	if res.Removed > 0 {
		s.logger.Info("orphaned photos removed", zap.Int("removed", res.Removed), zap.Int("scanned", res.Scanned))
	}
	return res, errors.Join(errs...)
}
