package service

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"go.uber.org/zap"
)

type CompanyService struct {
	*guard[repository.CompanyRelatedData]
	repos  *repository.Repositories
	logger *zap.Logger
}

func newCompanyService(repos *repository.Repositories, logger *zap.Logger, observer Observer) *CompanyService {
	s := &CompanyService{repos: repos, logger: logger}
	s.guard = &guard[repository.CompanyRelatedData]{
		entity: "company", label: "Company",
		repo: repos.Companies, repos: repos, logger: logger, observer: observer,
		name: func(ctx context.Context, id int) (string, error) {
			c, err := repos.Companies.GetByID(ctx, id)
			if err != nil {
				return "", err
			}
			return c.CompanyName, nil
		},
	}
	return s
}

func (s *CompanyService) List(ctx context.Context, q dto.ListQuery) (*database.Page[database.Company], error) {
	return s.repos.Companies.List(ctx, q.PageIndex, q.PageSize, q.Search)
}

func (s *CompanyService) ListActive(ctx context.Context) ([]database.Company, error) {
	return s.repos.Companies.ListActive(ctx)
}

func (s *CompanyService) Get(ctx context.Context, id int) (*database.Company, error) {
	c, err := s.repos.Companies.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("Company", int64(id))
	}
	return c, err
}

func (s *CompanyService) validate(ctx context.Context, req dto.CompanyRequest, excludeID int) (*database.Company, error) {
	name, err := text("companyName", req.CompanyName, 2, 100)
	if err != nil {
		return nil, err
	}
	mail, err := email("companyAdminEmail", req.CompanyAdminEmail, 150)
	if err != nil {
		return nil, err
	}
	contact, err := text("companyContactName", req.CompanyContactName, 2, 100)
	if err != nil {
		return nil, err
	}

	taken, err := s.repos.Companies.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errorx.ConflictError("Company", "companyName", name)
	}
	taken, err = s.repos.Companies.ExistsByEmail(ctx, mail, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errorx.ConflictError("Company", "companyAdminEmail", mail)
	}

	return &database.Company{CompanyName: name, CompanyAdminEmail: mail, CompanyContactName: contact}, nil
}

// Create validates and stores a company; new companies are active unless the request says otherwise
func (s *CompanyService) Create(ctx context.Context, req dto.CompanyRequest, stamp Stamp) (*database.Company, error) {
	var out *database.Company
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		c, err := s.validate(ctx, req, 0)
		if err != nil {
			return err
		}
		c.Active = activeOr(req.Active, true)
		c.CreatedOn, c.CreatedBy = stamp.At, stamp.Actor
		if err := s.repos.Companies.Create(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("company created", zap.Int("id", out.ID), zap.String("actor", stamp.Actor))
	return out, nil
}

func (s *CompanyService) Update(ctx context.Context, id int, req dto.CompanyRequest) (*database.Company, error) {
	var out *database.Company
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		c, err := s.validate(ctx, req, id)
		if err != nil {
			return err
		}
		existing.CompanyName, existing.CompanyAdminEmail, existing.CompanyContactName = c.CompanyName, c.CompanyAdminEmail, c.CompanyContactName
		existing.Active = activeOr(req.Active, existing.Active)
		if err := s.repos.Companies.Update(ctx, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	return out, err
}
