package service

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"go.uber.org/zap"
)

// CheckListService manages the inspection checklist items that get bound to assets
type CheckListService struct {
	*guard[repository.InspectionCheckListRelatedData]
	repos  *repository.Repositories
	logger *zap.Logger
}

func newCheckListService(repos *repository.Repositories, logger *zap.Logger, observer Observer) *CheckListService {
	s := &CheckListService{repos: repos, logger: logger}
	s.guard = &guard[repository.InspectionCheckListRelatedData]{
		entity: "inspection_checklist", label: "InspectionCheckList",
		repo: repos.CheckLists, repos: repos, logger: logger, observer: observer,
		name: func(ctx context.Context, id int) (string, error) {
			c, err := repos.CheckLists.GetByID(ctx, id)
			if err != nil {
				return "", err
			}
			return c.Name, nil
		},
	}
	return s
}

func (s *CheckListService) List(ctx context.Context, q dto.ListQuery) (*database.Page[database.InspectionCheckList], error) {
	return s.repos.CheckLists.List(ctx, q.PageIndex, q.PageSize, q.Search)
}

func (s *CheckListService) ListActive(ctx context.Context) ([]database.InspectionCheckList, error) {
	return s.repos.CheckLists.ListActive(ctx)
}

func (s *CheckListService) Get(ctx context.Context, id int) (*database.InspectionCheckList, error) {
	c, err := s.repos.CheckLists.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("InspectionCheckList", int64(id))
	}
	return c, err
}

func (s *CheckListService) validate(req dto.CheckListRequest) (*database.InspectionCheckList, error) {
	var (
		c   database.InspectionCheckList
		err error
	)
	if c.Name, err = text("name", req.Name, 2, 200); err != nil {
		return nil, err
	}
	if c.Description, err = text("description", req.Description, 0, 500); err != nil {
		return nil, err
	}
	if c.Title, err = text("title", req.Title, 0, 200); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CheckListService) Create(ctx context.Context, req dto.CheckListRequest) (*database.InspectionCheckList, error) {
	c, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	c.Active = activeOr(req.Active, true)
	if err := s.repos.CheckLists.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("checklist item created", zap.Int("id", c.ID))
	return c, nil
}

func (s *CheckListService) Update(ctx context.Context, id int, req dto.CheckListRequest) (*database.InspectionCheckList, error) {
	c, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	var out *database.InspectionCheckList
	err = s.repos.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		existing.Name, existing.Description, existing.Title = c.Name, c.Description, c.Title
		existing.Active = activeOr(req.Active, existing.Active)
		if err := s.repos.CheckLists.Update(ctx, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	return out, err
}
