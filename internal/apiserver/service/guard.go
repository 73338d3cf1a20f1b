package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"
	"github.com/amoylab/shopinspector/pkg/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DeleteStatus is the outcome of a guarded delete
type DeleteStatus string

const (
	DeleteDeleted  DeleteStatus = "deleted"
	DeleteNotFound DeleteStatus = "not_found"
	DeleteBlocked  DeleteStatus = "blocked"

	outcomeFailed = "failed"
)

// RelatedSummary is a related-data summary that can shorten itself for a confirmation prompt
type RelatedSummary[S any] interface {
	Preview() S
}

// DeleteOutcome reports a guarded delete. Related is only filled when the delete was blocked.
type DeleteOutcome[S RelatedSummary[S]] struct {
	ID      int
	Name    string
	Status  DeleteStatus
	Related S
}

// integrity is the repository side of a root entity
type integrity[S any] interface {
	CanDelete(ctx context.Context, id int) (bool, error)
	RelatedData(ctx context.Context, id int) (*S, error)
	Delete(ctx context.Context, id int) error
	ForceDelete(ctx context.Context, id int) error
}

// guard implements the can-delete / related-data / guarded delete / force delete contract
// for one root entity on top of its repository.
type guard[S RelatedSummary[S]] struct {
	entity   string
	label    string
	repo     integrity[S]
	repos    *repository.Repositories
	logger   *zap.Logger
	observer Observer
	// name resolves the display name of a row, returning gorm.ErrRecordNotFound for a missing one
	name func(ctx context.Context, id int) (string, error)
}

func (g *guard[S]) fields(id int) []zap.Field {
	return []zap.Field{zap.String("entity", g.entity), zap.Int("id", id)}
}

// CanDelete reports whether the row has no dependents. Read failures are logged and answer false.
func (g *guard[S]) CanDelete(ctx context.Context, id int) bool {
	ok, err := g.repo.CanDelete(ctx, id)
	if err != nil {
		g.logger.Error("failed to check dependents", append(g.fields(id), zap.Error(err))...)
		return false
	}
	return ok
}

// RelatedData summarises what a forced delete would remove. Failures are logged and yield an
// empty summary so a broken statistic never blocks the delete decision.
func (g *guard[S]) RelatedData(ctx context.Context, id int) S {
	return fromPtr(g.repo.RelatedData(ctx, id)).OrZero(g.logger, "failed to load related data", g.fields(id)...)
}

// Delete removes the row only when nothing depends on it. The check and the delete share one
// transaction; a dependent inserted in between trips the foreign key and is reported as blocked.
func (g *guard[S]) Delete(ctx context.Context, id int) (DeleteOutcome[S], error) {
	out := DeleteOutcome[S]{ID: id, Status: DeleteNotFound}
	if id <= 0 {
		g.observer.DeleteDone(g.entity, dto.DeleteModeGuarded, string(out.Status))
		return out, nil
	}

	name, err := g.name(ctx, id)
	if repository.IsNotFound(err) {
		g.observer.DeleteDone(g.entity, dto.DeleteModeGuarded, string(out.Status))
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to load %s with ID %d: %w", g.entity, id, err)
	}
	out.Name = name

	blocked := false
	err = g.repos.Transaction(ctx, func(ctx context.Context) error {
		ok, err := g.repo.CanDelete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			blocked = true
			return nil
		}
		return g.repo.Delete(ctx, id)
	})

	switch {
	case err == nil && !blocked:
		out.Status = DeleteDeleted
		g.logger.Info("deleted", g.fields(id)...)
	case err == nil:
		out.Status = DeleteBlocked
	case repository.IsNotFound(err):
		out.Status = DeleteNotFound
	case errorx.IsForeignKeyViolation(err):
		out.Status = DeleteBlocked
	default:
		g.observer.DeleteDone(g.entity, dto.DeleteModeGuarded, outcomeFailed)
		g.logger.Error("failed to delete", append(g.fields(id), zap.Error(err))...)
		return out, fmt.Errorf("failed to delete %s with ID %d: %w", g.entity, id, err)
	}

	if out.Status == DeleteBlocked {
		out.Related = g.RelatedData(ctx, id)
		g.logger.Info("delete blocked by dependents", g.fields(id)...)
	}
	g.observer.DeleteDone(g.entity, dto.DeleteModeGuarded, string(out.Status))
	return out, nil
}

// ForceDelete removes the row and its whole dependent subtree in one transaction
func (g *guard[S]) ForceDelete(ctx context.Context, id int) (err error) {
	if id <= 0 {
		return errorx.NotFoundError(g.label, int64(id))
	}

	scope := trace.Tracer("shopinspector/service").
		Start(ctx, "force_delete."+g.entity).
		WithAttrs(attribute.String("entity", g.entity), attribute.Int("id", id))
	defer func() { scope.Finish(err) }()

	err = g.repo.ForceDelete(scope.Ctx, id)
	switch {
	case err == nil:
		g.observer.DeleteDone(g.entity, dto.DeleteModeForce, string(DeleteDeleted))
		g.logger.Warn("force deleted with all dependents", g.fields(id)...)
		return nil
	case repository.IsNotFound(err):
		g.observer.DeleteDone(g.entity, dto.DeleteModeForce, string(DeleteNotFound))
		return errorx.NotFoundError(g.label, int64(id))
	case errors.Is(err, repository.ErrVanished):
		g.observer.DeleteDone(g.entity, dto.DeleteModeForce, outcomeFailed)
		return errorx.ErrConcurrentModification.WithMessage(
			fmt.Sprintf("%s with ID %d was removed by another request", g.label, id))
	default:
		g.observer.DeleteDone(g.entity, dto.DeleteModeForce, outcomeFailed)
		g.logger.Error("force delete rolled back", append(g.fields(id), zap.Error(err))...)
		return fmt.Errorf("failed to force delete %s with ID %d: %w", g.entity, id, err)
	}
}

// Blocked converts a blocked outcome into the API error carrying the capped preview
func (o DeleteOutcome[S]) Blocked(resourceType string) *errorx.APIError {
	return errorx.DeleteBlockedError(resourceType, o.Name, o.Related.Preview())
}
