package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/report"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/cnst"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"
	"github.com/amoylab/shopinspector/internal/storage"
	"github.com/amoylab/shopinspector/pkg/trace"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// photoDir is the storage directory of inspection photos; the recorded path is "/" + the storage name
const photoDir = "uploads/inspections"

// PhotoUpload is one uploaded file of an inspection submission
type PhotoUpload struct {
	Filename string
	Content  []byte
}

// SubmitInspectionInput is a completed inspection form
type SubmitInspectionInput struct {
	AssetID               int
	EmployeeID            int
	InspectionFrequencyID int
	InspectorName         string
	ThirdParty            *bool
	Items                 []dto.InspectionItemRequest
	Photos                []PhotoUpload
}

// StartView is what the inspection form of an asset is built from
type StartView struct {
	Asset          *database.Asset                `json:"asset"`
	CheckLists     []dto.CheckListView            `json:"checkLists"`
	LastInspection *dto.LastInspectionSummary     `json:"lastInspection,omitempty"`
	Employees      []database.Employee            `json:"employees"`
	Frequencies    []database.InspectionFrequency `json:"frequencies"`
}

// ReportFile is a generated inspection report
type ReportFile struct {
	Name    string
	Content []byte
}

type InspectionService struct {
	repos        *repository.Repositories
	storage      storage.Storage
	reports      *report.Generator
	observer     Observer
	logger       *zap.Logger
	maxPhotoSize int64
	now          func() time.Time
}

func newInspectionService(d Deps, logger *zap.Logger) *InspectionService {
	reports := d.Reports
	if reports == nil {
		reports = report.NewGenerator(d.Logger)
	}
	return &InspectionService{
		repos:        d.Repos,
		storage:      d.Storage,
		reports:      reports,
		observer:     d.Observer,
		logger:       logger,
		maxPhotoSize: d.MaxPhotoSize,
		now:          time.Now,
	}
}

type acceptedPhoto struct {
	name string
	kind storage.ImageKind
	data []byte
}

// screenPhotos keeps the uploads whose content is a supported image within the size limit
func (s *InspectionService) screenPhotos(photos []PhotoUpload) ([]acceptedPhoto, int) {
	var (
		accepted []acceptedPhoto
		skipped  int
	)
	for _, p := range photos {
		kind, err := storage.DetectImage(p.Content, s.maxPhotoSize)
		if err != nil {
			skipped++
			s.logger.Warn("inspection photo skipped", zap.String("filename", p.Filename), zap.Error(err))
			continue
		}
		accepted = append(accepted, acceptedPhoto{name: p.Filename, kind: kind, data: p.Content})
	}
	return accepted, skipped
}

// checkReferences validates the asset, employee, frequency and answered bindings of a submission
func (s *InspectionService) checkReferences(ctx context.Context, in SubmitInspectionInput) error {
	if err := positiveID("assetId", in.AssetID); err != nil {
		return err
	}
	if err := positiveID("employeeId", in.EmployeeID); err != nil {
		return err
	}
	if err := positiveID("inspectionFrequencyId", in.InspectionFrequencyID); err != nil {
		return err
	}

	found, err := s.repos.Assets.Exists(ctx, in.AssetID)
	if err != nil {
		return err
	}
	if !found {
		return errorx.NotFoundError("Asset", int64(in.AssetID))
	}
	if _, err := s.repos.Employees.GetByID(ctx, in.EmployeeID); err != nil {
		if repository.IsNotFound(err) {
			return errorx.ValidationError("employeeId", in.EmployeeID, "employeeId refers to an employee that does not exist")
		}
		return err
	}
	if _, err := s.repos.Frequencies.GetByID(ctx, in.InspectionFrequencyID); err != nil {
		if repository.IsNotFound(err) {
			return errorx.ValidationError("inspectionFrequencyId", in.InspectionFrequencyID, "inspectionFrequencyId refers to a frequency that does not exist")
		}
		return err
	}

	ids := make([]int, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.AssetCheckListID)
	}
	bindings, err := s.repos.AssetCheckLists.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	owner := make(map[int]int, len(bindings))
	for _, b := range bindings {
		owner[b.ID] = b.AssetID
	}
	for _, id := range ids {
		if assetID, ok := owner[id]; !ok || assetID != in.AssetID {
			return errorx.ValidationError("assetCheckListId", id, "assetCheckListId is not a checklist item of this asset")
		}
	}
	return nil
}

// SubmitInspection records an inspection with its answers and photos. Unreadable or unsupported
// photos are skipped; everything else is written in one transaction and stored files are removed
// again when it fails.
func (s *InspectionService) SubmitInspection(ctx context.Context, in SubmitInspectionInput, stamp Stamp) (dto.SubmitInspectionResponse, error) {
	var res dto.SubmitInspectionResponse
	inspector, err := text("inspectorName", in.InspectorName, 0, 100)
	if err != nil {
		return res, err
	}
	if inspector == "" {
		inspector = cnst.DefaultInspectorName
	}
	thirdParty := in.ThirdParty != nil && *in.ThirdParty

	photos, skipped := s.screenPhotos(in.Photos)

	var written []string
	err = s.repos.Transaction(ctx, func(ctx context.Context) error {
		written = written[:0]
		if err := s.checkReferences(ctx, in); err != nil {
			return err
		}

		insp := &database.AssetInspection{
			AssetID:               in.AssetID,
			InspectorName:         inspector,
			InspectionDate:        stamp.At,
			InspectionFrequencyID: in.InspectionFrequencyID,
			CreatedOn:             stamp.At,
			CreatedBy:             stamp.Actor,
			EmployeeID:            in.EmployeeID,
			ThirdParty:            &thirdParty,
		}
		if err := s.repos.Inspections.Create(ctx, insp); err != nil {
			return err
		}

		items := make([]database.AssetInspectionCheckList, 0, len(in.Items))
		for _, item := range in.Items {
			items = append(items, database.AssetInspectionCheckList{
				AssetInspectionID: insp.ID,
				AssetCheckListID:  item.AssetCheckListID,
				IsChecked:         item.IsChecked,
				Remarks:           trimRemarks(item.Remarks),
			})
		}
		if err := s.repos.Inspections.CreateItems(ctx, items); err != nil {
			return err
		}

		for i, p := range photos {
			file := fmt.Sprintf("insp_%d_%s%s", insp.ID, uuid.NewString(), p.kind.Ext)
			name := path.Join(photoDir, file)
			if _, err := s.storage.Save(ctx, name, bytes.NewReader(p.data)); err != nil {
				return fmt.Errorf("failed to store photo %q: %w", p.name, err)
			}
			written = append(written, name)

			photo := &database.InspectionPhoto{
				AssetInspectionID: insp.ID,
				PhotoPath:         "/" + name,
				UploadedOn:        stamp.At,
				DisplayOrder:      i,
			}
			if err := s.repos.Photos.Create(ctx, photo); err != nil {
				return err
			}
			if i == 0 {
				if err := s.repos.Inspections.SetAttachment(ctx, insp.ID, photo.PhotoPath); err != nil {
					return err
				}
			}
		}

		res = dto.SubmitInspectionResponse{InspectionID: insp.ID, PhotosSaved: len(photos), PhotosSkipped: skipped}
		return nil
	})
	if err != nil {
		s.discard(written)
		return dto.SubmitInspectionResponse{}, err
	}

	s.observer.InspectionSubmitted(res.PhotosSaved, res.PhotosSkipped)
	s.logger.Info("inspection submitted",
		zap.Int("inspection_id", res.InspectionID),
		zap.Int("asset_id", in.AssetID),
		zap.Int("items", len(in.Items)),
		zap.Int("photos_saved", res.PhotosSaved),
		zap.Int("photos_skipped", res.PhotosSkipped),
		zap.String("actor", stamp.Actor))
	return res, nil
}

// discard removes files written by a rolled back submission
func (s *InspectionService) discard(names []string) {
	for _, name := range names {
		if err := s.storage.Delete(context.Background(), name); err != nil {
			s.logger.Error("failed to remove orphaned photo", zap.String("name", name), zap.Error(err))
		}
	}
}

func trimRemarks(r *string) *string {
	if r == nil {
		return nil
	}
	v := strings.TrimSpace(*r)
	if v == "" {
		return nil
	}
	return &v
}

// StartInspection returns the active checklist of the asset, the previous inspection and the
// choices of the inspection form
func (s *InspectionService) StartInspection(ctx context.Context, assetID int) (*StartView, error) {
	asset, err := s.repos.Assets.GetByID(ctx, assetID)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("Asset", int64(assetID))
	}
	if err != nil {
		return nil, err
	}

	bindings, err := s.repos.AssetCheckLists.ListActiveByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	view := &StartView{Asset: asset, CheckLists: make([]dto.CheckListView, 0, len(bindings))}
	for _, b := range bindings {
		cv := dto.CheckListView{AssetCheckListID: b.ID, Name: cnst.UnknownChecklist, DisplayOrder: b.DisplayOrder}
		if c := b.InspectionCheckList; c != nil {
			cv.Name, cv.Title, cv.Description = c.Name, c.Title, c.Description
		}
		view.CheckLists = append(view.CheckLists, cv)
	}

	if view.LastInspection, err = s.lastInspection(ctx, assetID); err != nil {
		return nil, err
	}
	if view.Employees, err = s.repos.Employees.ListActive(ctx); err != nil {
		return nil, err
	}
	freqs, err := s.repos.Frequencies.List(ctx, nil, nil, "")
	if err != nil {
		return nil, err
	}
	view.Frequencies = freqs.Items
	return view, nil
}

func (s *InspectionService) lastInspection(ctx context.Context, assetID int) (*dto.LastInspectionSummary, error) {
	last, err := s.repos.Inspections.LastByAsset(ctx, assetID)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	photos, err := s.repos.Photos.CountByInspection(ctx, last.ID)
	if err != nil {
		return nil, err
	}

	sum := &dto.LastInspectionSummary{
		ID:             last.ID,
		InspectionDate: last.InspectionDate,
		InspectorName:  last.InspectorName,
		EmployeeName:   cnst.UnknownEmployee,
		FrequencyName:  cnst.UnknownFrequency,
		ThirdParty:     last.ThirdParty != nil && *last.ThirdParty,
		Attachment:     last.Attachment,
		PhotoCount:     photos,
	}
	if last.Employee != nil {
		sum.EmployeeName = last.Employee.EmployeeName
	}
	if last.InspectionFrequency != nil {
		sum.FrequencyName = last.InspectionFrequency.FrequencyName
	}
	return sum, nil
}

// ListInspections pages the inspection history of an asset, newest first
func (s *InspectionService) ListInspections(ctx context.Context, assetID int, q dto.ListQuery) (*database.Page[database.AssetInspection], error) {
	found, err := s.repos.Assets.Exists(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errorx.NotFoundError("Asset", int64(assetID))
	}
	return s.repos.Inspections.ListByAsset(ctx, assetID, q.PageIndex, q.PageSize)
}

func (s *InspectionService) GetInspection(ctx context.Context, id int) (*database.AssetInspection, error) {
	insp, err := s.repos.Inspections.GetDetails(ctx, id)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("AssetInspection", int64(id))
	}
	return insp, err
}

// reportPhotos resolves the stored photos of an inspection to files on disk
func (s *InspectionService) reportPhotos(photos []database.InspectionPhoto) []report.Photo {
	out := make([]report.Photo, 0, len(photos))
	for _, p := range photos {
		name := strings.TrimPrefix(p.PhotoPath, "/")
		file, err := s.storage.Path(name)
		if err != nil {
			// a blank path names no file; the report leaves the entry out of the grid
			s.logger.Warn("invalid photo path", zap.Int("photo_id", p.ID), zap.String("path", p.PhotoPath), zap.Error(err))
			file = ""
		}
		out = append(out, report.Photo{Label: path.Base(p.PhotoPath), Path: file})
	}
	return out
}

// ExportInspection renders the PDF report of an inspection
func (s *InspectionService) ExportInspection(ctx context.Context, id int) (_ *ReportFile, err error) {
	start := s.now()
	scope := trace.Tracer("shopinspector/service").
		Start(ctx, "export_inspection").
		WithAttrs(attribute.Int("inspection_id", id))
	defer func() { scope.Finish(err) }()

	insp, err := s.GetInspection(scope.Ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.reports.Generate(insp, s.reportPhotos(insp.Photos), start)
	s.observer.ReportDone(start, err)
	if err != nil {
		s.logger.Error("report generation failed", zap.Int("inspection_id", id), zap.Error(err))
		return nil, errorx.ErrReportGeneration.Clone().WithDetail("inspection_id", id)
	}
	return &ReportFile{Name: fmt.Sprintf("Inspection_%d.pdf", id), Content: content}, nil
}
