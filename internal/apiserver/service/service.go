package service

import (
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/cache"
	"github.com/amoylab/shopinspector/internal/apiserver/report"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/cnst"
	"github.com/amoylab/shopinspector/internal/storage"

	"go.uber.org/zap"
)

// Stamp carries who performs a write and when
type Stamp struct {
	Actor string
	At    time.Time
}

// NewStamp normalises the actor (falling back to "System") and the time (UTC)
func NewStamp(actor string, at time.Time) Stamp {
	return Stamp{Actor: cnst.ActorOr(actor, cnst.ActorSystem), At: at.UTC()}
}

// Observer receives delete, report and submission outcomes; *metrics.Metrics implements it
type Observer interface {
	DeleteDone(entity, mode, outcome string)
	ReportDone(since time.Time, err error)
	InspectionSubmitted(photosSaved, photosSkipped int)
}

type noopObserver struct{}

func (noopObserver) DeleteDone(string, string, string) {}
func (noopObserver) ReportDone(time.Time, error)       {}
func (noopObserver) InspectionSubmitted(int, int)      {}

// Deps are the collaborators shared by every service
type Deps struct {
	Repos    *repository.Repositories
	Storage  storage.Storage
	Reports  *report.Generator
	Cache    *cache.Cache // optional QR code cache
	Observer Observer
	Logger   *zap.Logger

	// PublicBaseURL prefixes the public inspection links encoded in QR codes
	PublicBaseURL string
	MaxPhotoSize  int64
}

// Services bundles the application services
type Services struct {
	Companies       *CompanyService
	Employees       *EmployeeService
	AssetTypes      *AssetTypeService
	Assets          *AssetService
	CheckLists      *CheckListService
	Frequencies     *FrequencyService
	AssetCheckLists *AssetCheckListService
	Inspections     *InspectionService
}

func New(d Deps) *Services {
	if d.Observer == nil {
		d.Observer = noopObserver{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.MaxPhotoSize <= 0 {
		d.MaxPhotoSize = storage.DefaultMaxImageSize
	}
	logger := d.Logger.Named("service")

	return &Services{
		Companies:       newCompanyService(d.Repos, logger, d.Observer),
		Employees:       newEmployeeService(d.Repos, logger, d.Observer),
		AssetTypes:      newAssetTypeService(d.Repos, logger),
		Assets:          newAssetService(d, logger),
		CheckLists:      newCheckListService(d.Repos, logger, d.Observer),
		Frequencies:     newFrequencyService(d.Repos, logger, d.Observer),
		AssetCheckLists: newAssetCheckListService(d.Repos, logger, d.Observer),
		Inspections:     newInspectionService(d, logger),
	}
}
