package service

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"go.uber.org/zap"
)

type FrequencyService struct {
	*guard[repository.InspectionFrequencyRelatedData]
	repos  *repository.Repositories
	logger *zap.Logger
}

func newFrequencyService(repos *repository.Repositories, logger *zap.Logger, observer Observer) *FrequencyService {
	s := &FrequencyService{repos: repos, logger: logger}
	s.guard = &guard[repository.InspectionFrequencyRelatedData]{
		entity: "inspection_frequency", label: "InspectionFrequency",
		repo: repos.Frequencies, repos: repos, logger: logger, observer: observer,
		name: func(ctx context.Context, id int) (string, error) {
			f, err := repos.Frequencies.GetByID(ctx, id)
			if err != nil {
				return "", err
			}
			return f.FrequencyName, nil
		},
	}
	return s
}

func (s *FrequencyService) List(ctx context.Context, q dto.ListQuery) (*database.Page[database.InspectionFrequency], error) {
	return s.repos.Frequencies.List(ctx, q.PageIndex, q.PageSize, q.Search)
}

func (s *FrequencyService) Get(ctx context.Context, id int) (*database.InspectionFrequency, error) {
	f, err := s.repos.Frequencies.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("InspectionFrequency", int64(id))
	}
	return f, err
}

func (s *FrequencyService) save(ctx context.Context, id int, req dto.FrequencyRequest) (*database.InspectionFrequency, error) {
	name, err := text("frequencyName", req.FrequencyName, 2, 100)
	if err != nil {
		return nil, err
	}

	var out *database.InspectionFrequency
	err = s.repos.Transaction(ctx, func(ctx context.Context) error {
		f := &database.InspectionFrequency{}
		if id > 0 {
			existing, err := s.Get(ctx, id)
			if err != nil {
				return err
			}
			f = existing
		}
		taken, err := s.repos.Frequencies.ExistsByName(ctx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return errorx.ConflictError("InspectionFrequency", "frequencyName", name)
		}

		f.FrequencyName = name
		if id > 0 {
			err = s.repos.Frequencies.Update(ctx, f)
		} else {
			err = s.repos.Frequencies.Create(ctx, f)
		}
		out = f
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FrequencyService) Create(ctx context.Context, req dto.FrequencyRequest) (*database.InspectionFrequency, error) {
	return s.save(ctx, 0, req)
}

func (s *FrequencyService) Update(ctx context.Context, id int, req dto.FrequencyRequest) (*database.InspectionFrequency, error) {
	if id <= 0 {
		return nil, errorx.NotFoundError("InspectionFrequency", int64(id))
	}
	return s.save(ctx, id, req)
}
