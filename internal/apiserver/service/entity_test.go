package service

import (
	"context"
	"testing"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStamp(t *testing.T) {
	local := time.Date(2024, 5, 20, 10, 15, 0, 0, time.FixedZone("CEST", 2*3600))

	s := NewStamp("  ", local)
	assert.Equal(t, "System", s.Actor)
	assert.Equal(t, time.UTC, s.At.Location())
	assert.True(t, s.At.Equal(local))

	assert.Equal(t, "alice", NewStamp("alice", local).Actor)
}

func TestCompany_CreateValidatesAndStamps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c, err := e.svc.Companies.Create(ctx, dto.CompanyRequest{
		CompanyName:        "  Acme Ltd ",
		CompanyAdminEmail:  "Admin@ACME.example",
		CompanyContactName: "Jo Smith",
	}, NewStamp("", testNow))
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", c.CompanyName)
	assert.Equal(t, "admin@acme.example", c.CompanyAdminEmail)
	assert.True(t, c.Active)
	assert.Equal(t, "System", c.CreatedBy)
	assert.True(t, c.CreatedOn.Equal(testNow))

	cases := map[string]struct {
		req  dto.CompanyRequest
		code string
	}{
		"missing name":   {dto.CompanyRequest{CompanyAdminEmail: "a@b.example", CompanyContactName: "Jo"}, "E1002"},
		"short name":     {dto.CompanyRequest{CompanyName: "A", CompanyAdminEmail: "a@b.example", CompanyContactName: "Jo"}, "E1001"},
		"bad email":      {dto.CompanyRequest{CompanyName: "Beta", CompanyAdminEmail: "not-an-email", CompanyContactName: "Jo"}, "E1001"},
		"duplicate name": {dto.CompanyRequest{CompanyName: "ACME LTD", CompanyAdminEmail: "other@b.example", CompanyContactName: "Jo"}, "E4091"},
		"duplicate mail": {dto.CompanyRequest{CompanyName: "Beta", CompanyAdminEmail: "admin@acme.example", CompanyContactName: "Jo"}, "E4091"},
	}
	for name, tc := range cases {
		_, err := e.svc.Companies.Create(ctx, tc.req, NewStamp("alice", testNow))
		require.Error(t, err, name)
		requireCode(t, err, tc.code)
	}
	assert.Equal(t, int64(1), e.count(&database.Company{}))
}

func TestCompany_Update(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.company("Acme")
	e.company("Beta")

	updated, err := e.svc.Companies.Update(ctx, acme.ID, dto.CompanyRequest{
		CompanyName: "Acme", CompanyAdminEmail: "new@acme.example", CompanyContactName: "Kim", Active: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "new@acme.example", updated.CompanyAdminEmail)
	assert.False(t, updated.Active)
	assert.Equal(t, "test", updated.CreatedBy)

	_, err = e.svc.Companies.Update(ctx, acme.ID, dto.CompanyRequest{
		CompanyName: "beta", CompanyAdminEmail: "x@acme.example", CompanyContactName: "Kim",
	})
	requireCode(t, err, "E4091")

	_, err = e.svc.Companies.Update(ctx, 404, dto.CompanyRequest{
		CompanyName: "Gamma", CompanyAdminEmail: "g@g.example", CompanyContactName: "Kim",
	})
	requireCode(t, err, "E4001")
}

func TestEmployee_CompanyRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme, beta := e.company("Acme"), e.company("Beta")
	stamp := NewStamp("alice", testNow)

	_, err := e.svc.Employees.Create(ctx, dto.EmployeeRequest{EmployeeName: "Zoe"}, stamp)
	requireCode(t, err, "E1001")
	_, err = e.svc.Employees.Create(ctx, dto.EmployeeRequest{EmployeeName: "Zoe", CompanyID: 99}, stamp)
	requireCode(t, err, "E1001")

	zoe, err := e.svc.Employees.Create(ctx, dto.EmployeeRequest{EmployeeName: "Zoe", CompanyID: acme.ID}, stamp)
	require.NoError(t, err)
	assert.Equal(t, "alice", zoe.CreatedBy)

	_, err = e.svc.Employees.Create(ctx, dto.EmployeeRequest{EmployeeName: " zoe ", CompanyID: acme.ID}, stamp)
	requireCode(t, err, "E4091")

	_, err = e.svc.Employees.Create(ctx, dto.EmployeeRequest{EmployeeName: "Zoe", CompanyID: beta.ID}, stamp)
	require.NoError(t, err)

	moved, err := e.svc.Employees.Update(ctx, zoe.ID, dto.EmployeeRequest{EmployeeName: "Zoe A", CompanyID: beta.ID})
	require.NoError(t, err)
	assert.Equal(t, beta.ID, moved.CompanyID)
}

func TestAssetType_AndAsset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	stamp := NewStamp("alice", testNow)

	forklift, err := e.svc.AssetTypes.Create(ctx, dto.AssetTypeRequest{AssetTypeName: "Forklift"})
	require.NoError(t, err)
	_, err = e.svc.AssetTypes.Create(ctx, dto.AssetTypeRequest{AssetTypeName: "FORKLIFT"})
	requireCode(t, err, "E4091")

	_, err = e.svc.Assets.Create(ctx, dto.AssetRequest{AssetName: "Forklift 1", AssetTypeID: 42, AssetCode: "FL-1"}, stamp)
	requireCode(t, err, "E1001")

	a, err := e.svc.Assets.Create(ctx, dto.AssetRequest{AssetName: "Forklift 1", AssetTypeID: forklift.ID, AssetCode: " FL-1 ", Department: "Yard"}, stamp)
	require.NoError(t, err)
	assert.Equal(t, "FL-1", a.AssetCode)
	assert.True(t, a.Active)

	_, err = e.svc.Assets.Create(ctx, dto.AssetRequest{AssetName: "Forklift 2", AssetTypeID: forklift.ID, AssetCode: "fl-1"}, stamp)
	requireCode(t, err, "E4091")

	// assets without a code never collide
	_, err = e.svc.Assets.Create(ctx, dto.AssetRequest{AssetName: "Cart A", AssetTypeID: forklift.ID}, stamp)
	require.NoError(t, err)
	_, err = e.svc.Assets.Create(ctx, dto.AssetRequest{AssetName: "Cart B", AssetTypeID: forklift.ID}, stamp)
	require.NoError(t, err)

	// deleting the type takes its unbound assets with it
	require.NoError(t, e.svc.AssetTypes.Delete(ctx, forklift.ID))
	assert.Equal(t, int64(0), e.count(&database.Asset{}))
	requireCode(t, e.svc.AssetTypes.Delete(ctx, forklift.ID), "E4001")
}

func TestAssetType_DeleteRefusedWhileAssetsAreBound(t *testing.T) {
	e := newEnv(t)
	s := e.site()

	err := e.svc.AssetTypes.Delete(context.Background(), s.asset.AssetTypeID)
	requireCode(t, err, "E4094")
	assert.Equal(t, int64(1), e.count(&database.Asset{}))
}

func TestCheckListAndFrequency(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c, err := e.svc.CheckLists.Create(ctx, dto.CheckListRequest{Name: " Brakes ", Title: "Brake test"})
	require.NoError(t, err)
	assert.Equal(t, "Brakes", c.Name)
	assert.True(t, c.Active)

	c, err = e.svc.CheckLists.Update(ctx, c.ID, dto.CheckListRequest{Name: "Brakes", Description: "Pedal and hand brake", Active: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, c.Active)
	assert.Equal(t, "Pedal and hand brake", c.Description)

	_, err = e.svc.CheckLists.Update(ctx, 99, dto.CheckListRequest{Name: "Horn"})
	requireCode(t, err, "E4001")

	_, err = e.svc.Frequencies.Create(ctx, dto.FrequencyRequest{FrequencyName: "Weekly"})
	require.NoError(t, err)
	_, err = e.svc.Frequencies.Create(ctx, dto.FrequencyRequest{FrequencyName: "weekly "})
	requireCode(t, err, "E4091")
	_, err = e.svc.Frequencies.Update(ctx, 0, dto.FrequencyRequest{FrequencyName: "Daily"})
	requireCode(t, err, "E4001")
}

func TestAssetCheckList_CreateAndUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.site()
	signs := e.checklist("Signs")

	b, err := e.svc.AssetCheckLists.Create(ctx, dto.AssetCheckListRequest{AssetID: s.asset.ID, InspectionCheckListID: signs.ID, DisplayOrder: 5})
	require.NoError(t, err)
	assert.True(t, b.Active)

	_, err = e.svc.AssetCheckLists.Create(ctx, dto.AssetCheckListRequest{AssetID: s.asset.ID, InspectionCheckListID: signs.ID})
	requireCode(t, err, "E4091")
	_, err = e.svc.AssetCheckLists.Create(ctx, dto.AssetCheckListRequest{AssetID: 999, InspectionCheckListID: signs.ID})
	requireCode(t, err, "E1001")

	b, err = e.svc.AssetCheckLists.Update(ctx, b.ID, dto.AssetCheckListRequest{DisplayOrder: 7, Active: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, 7, b.DisplayOrder)
	assert.False(t, b.Active)

	_, err = e.svc.AssetCheckLists.Update(ctx, b.ID, dto.AssetCheckListRequest{AssetID: s.asset.ID + 1})
	requireCode(t, err, "E1001")

	st, err := e.svc.AssetCheckLists.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, AssignmentStats{AssetsWithActiveChecklists: 1, ActiveAssignments: 2}, st)
}

func TestAssignChecklists(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.site()
	brakes := s.bindings[0].InspectionCheckListID
	lights, signs := e.checklist("Lights"), e.checklist("Signs")

	res, err := e.svc.AssetCheckLists.AssignChecklists(ctx, s.asset.ID, []int{signs.ID, brakes, lights.ID, signs.ID}, 10, true)
	require.NoError(t, err)
	assert.Equal(t, dto.AssignCheckListsResponse{Created: 2, Skipped: 1}, res)

	var rows []database.AssetCheckList
	require.NoError(t, e.db.Where("asset_id = ? AND display_order >= ?", s.asset.ID, 10).Order("display_order").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, signs.ID, rows[0].InspectionCheckListID)
	assert.Equal(t, 10, rows[0].DisplayOrder)
	assert.Equal(t, lights.ID, rows[1].InspectionCheckListID)
	assert.Equal(t, 11, rows[1].DisplayOrder)

	_, err = e.svc.AssetCheckLists.AssignChecklists(ctx, s.asset.ID, nil, 0, true)
	requireCode(t, err, "E1002")
	_, err = e.svc.AssetCheckLists.AssignChecklists(ctx, s.asset.ID, []int{lights.ID, 777}, 0, true)
	requireCode(t, err, "E1001")
	_, err = e.svc.AssetCheckLists.AssignChecklists(ctx, 555, []int{lights.ID}, 0, true)
	requireCode(t, err, "E1001")
	assert.Equal(t, int64(4), e.count(&database.AssetCheckList{}))
}
