package service

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"go.uber.org/zap"
)

type EmployeeService struct {
	*guard[repository.EmployeeRelatedData]
	repos  *repository.Repositories
	logger *zap.Logger
}

func newEmployeeService(repos *repository.Repositories, logger *zap.Logger, observer Observer) *EmployeeService {
	s := &EmployeeService{repos: repos, logger: logger}
	s.guard = &guard[repository.EmployeeRelatedData]{
		entity: "employee", label: "Employee",
		repo: repos.Employees, repos: repos, logger: logger, observer: observer,
		name: func(ctx context.Context, id int) (string, error) {
			e, err := repos.Employees.GetByID(ctx, id)
			if err != nil {
				return "", err
			}
			return e.EmployeeName, nil
		},
	}
	return s
}

func (s *EmployeeService) List(ctx context.Context, q dto.ListQuery) (*database.Page[database.Employee], error) {
	return s.repos.Employees.List(ctx, q.PageIndex, q.PageSize, q.Search)
}

// ListActive returns the employees that may be named on a submitted inspection
func (s *EmployeeService) ListActive(ctx context.Context) ([]database.Employee, error) {
	return s.repos.Employees.ListActive(ctx)
}

func (s *EmployeeService) Get(ctx context.Context, id int) (*database.Employee, error) {
	e, err := s.repos.Employees.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("Employee", int64(id))
	}
	return e, err
}

func (s *EmployeeService) validate(ctx context.Context, req dto.EmployeeRequest, excludeID int) (*database.Employee, error) {
	name, err := text("employeeName", req.EmployeeName, 2, 100)
	if err != nil {
		return nil, err
	}
	if err := positiveID("companyId", req.CompanyID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Companies.GetByID(ctx, req.CompanyID); err != nil {
		if repository.IsNotFound(err) {
			return nil, errorx.ValidationError("companyId", req.CompanyID, "companyId refers to a company that does not exist")
		}
		return nil, err
	}

	taken, err := s.repos.Employees.ExistsInCompany(ctx, name, req.CompanyID, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errorx.ConflictError("Employee", "employeeName", name)
	}
	return &database.Employee{EmployeeName: name, CompanyID: req.CompanyID}, nil
}

func (s *EmployeeService) Create(ctx context.Context, req dto.EmployeeRequest, stamp Stamp) (*database.Employee, error) {
	var out *database.Employee
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		e, err := s.validate(ctx, req, 0)
		if err != nil {
			return err
		}
		e.Active = activeOr(req.Active, true)
		e.CreatedOn, e.CreatedBy = stamp.At, stamp.Actor
		if err := s.repos.Employees.Create(ctx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee created", zap.Int("id", out.ID), zap.Int("company_id", out.CompanyID), zap.String("actor", stamp.Actor))
	return out, nil
}

func (s *EmployeeService) Update(ctx context.Context, id int, req dto.EmployeeRequest) (*database.Employee, error) {
	var out *database.Employee
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		e, err := s.validate(ctx, req, id)
		if err != nil {
			return err
		}
		existing.EmployeeName, existing.CompanyID = e.EmployeeName, e.CompanyID
		existing.Active = activeOr(req.Active, existing.Active)
		if err := s.repos.Employees.Update(ctx, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	return out, err
}
