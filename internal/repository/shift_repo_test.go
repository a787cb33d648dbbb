package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storeshift_v1_202610/internal/model"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	// :memory: 库按连接隔离，固定单连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func draftShift(storeID, userID, date, runID string) model.Shift {
	s := model.Shift{
		StoreID:    storeID,
		UserID:     userID,
		Date:       date,
		StartTime:  strPtr("09:00"),
		EndTime:    strPtr("17:00"),
		Department: "floor",
		Status:     model.ShiftStatusDraft,
	}
	if runID != "" {
		s.GenerationRunID = strPtr(runID)
	}
	return s
}

func TestShiftRepo_PublishByRun_Conditional(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewShiftRepository(db)
	ctx := context.Background()

	shifts := []model.Shift{
		draftShift("s1", "u1", "2026-03-02", "run-1"),
		draftShift("s1", "u2", "2026-03-03", "run-1"),
		draftShift("s1", "u3", "2026-03-03", "run-2"),
	}
	require.NoError(t, repo.CreateBatch(ctx, shifts))

	n, err := repo.PublishByRun(ctx, "run-1", "batch-a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// 第二次只会命中 0 行
	n, err = repo.PublishByRun(ctx, "run-1", "batch-b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	rows, err := repo.ListByBatch(ctx, "batch-a")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.ListByBatch(ctx, "batch-b")
	require.NoError(t, err)
	assert.Empty(t, rows)

	counts, err := repo.CountByRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.ShiftStatusDraft])
}

func TestShiftRepo_PublishByStoreRange(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewShiftRepository(db)
	ctx := context.Background()

	shifts := []model.Shift{
		draftShift("s1", "u1", "2026-03-02", "run-1"),
		draftShift("s1", "u2", "2026-03-08", ""),
		draftShift("s1", "u3", "2026-03-09", ""), // 区间外
		draftShift("s2", "u4", "2026-03-04", ""), // 其他门店
	}
	require.NoError(t, repo.CreateBatch(ctx, shifts))

	count, err := repo.CountDraftByStoreRange(ctx, "s1", "2026-03-02", "2026-03-08")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	n, err := repo.PublishByStoreRange(ctx, "s1", "2026-03-02", "2026-03-08", "batch-p")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := repo.ListByStoreRange(ctx, "s1", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	for _, s := range all {
		if s.Date == "2026-03-09" {
			assert.Equal(t, model.ShiftStatusDraft, s.Status)
		} else {
			assert.Equal(t, model.ShiftStatusPublished, s.Status)
		}
	}
}

func TestShiftRepo_ArchiveGroup_OnlyPublished(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewShiftRepository(db)
	ctx := context.Background()

	shifts := []model.Shift{
		draftShift("s1", "u1", "2026-03-02", "run-1"),
		draftShift("s1", "u1", "2026-03-03", "run-1"),
		draftShift("s1", "u2", "2026-03-03", "run-1"),
	}
	require.NoError(t, repo.CreateBatch(ctx, shifts))

	// 草稿不能直接归档
	n, err := repo.ArchiveGroup(ctx, ShiftGroup{UserID: "u1", StoreID: "s1"}, "2026-03-02", "2026-03-08", "b0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = repo.PublishByRun(ctx, "run-1", "b1")
	require.NoError(t, err)

	groups, err := repo.ListPublishedGroups(ctx, "2026-03-02", "2026-03-08")
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	n, err = repo.ArchiveGroup(ctx, ShiftGroup{UserID: "u1", StoreID: "s1"}, "2026-03-02", "2026-03-08", "b2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	groups, err = repo.ListPublishedGroups(ctx, "2026-03-02", "2026-03-08")
	require.NoError(t, err)
	assert.Equal(t, []ShiftGroup{{UserID: "u2", StoreID: "s1"}}, groups)
}

func TestShiftRepo_CreateBatch_RejectsDayOffWithTimes(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewShiftRepository(db)
	ctx := context.Background()

	dayOff := draftShift("s1", "u2", "2026-03-03", "run-1")
	dayOff.IsDayOff = true
	err := repo.CreateBatch(ctx, []model.Shift{draftShift("s1", "u1", "2026-03-02", "run-1"), dayOff})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "休息日不能设置上下班时间")

	missing := draftShift("s1", "", "2026-03-02", "")
	assert.Error(t, repo.CreateBatch(ctx, []model.Shift{missing}))

	// 整批不落库
	var count int64
	require.NoError(t, db.Model(&model.Shift{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// 不带时间的休息日正常写入
	dayOff.StartTime, dayOff.EndTime = nil, nil
	require.NoError(t, repo.CreateBatch(ctx, []model.Shift{dayOff}))
	require.NoError(t, db.Model(&model.Shift{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBalanceRepo_ApplyDelta_Accumulates(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewBalanceRepository(db)
	ctx := context.Background()

	missing, err := repo.Get(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.ApplyDelta(ctx, "u1", "s1", decimal.NewFromInt(5)))
	require.NoError(t, repo.ApplyDelta(ctx, "u1", "s1", decimal.NewFromInt(-2)))
	require.NoError(t, repo.ApplyDelta(ctx, "u1", "s2", decimal.NewFromInt(-5)))

	b, err := repo.Get(ctx, "u1", "s1")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, b.CurrentBalance.Equal(decimal.NewFromInt(3)), "balance = %s", b.CurrentBalance)

	b, err = repo.Get(ctx, "u1", "s2")
	require.NoError(t, err)
	assert.True(t, b.CurrentBalance.Equal(decimal.NewFromInt(-5)), "balance = %s", b.CurrentBalance)
}

func TestBalanceRepo_Settlement(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewBalanceRepository(db)
	ctx := context.Background()

	s := &model.BalanceSettlement{
		UserID:        "u1",
		StoreID:       "s1",
		WeekStart:     "2026-03-02",
		WorkedHours:   decimal.NewFromInt(42),
		ContractHours: decimal.NewFromInt(40),
		Delta:         decimal.NewFromInt(2),
	}
	require.NoError(t, repo.SaveSettlement(ctx, s))
	assert.NotEmpty(t, s.ID)

	found, err := repo.GetSettlement(ctx, "u1", "s1", "2026-03-02")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Delta.Equal(decimal.NewFromInt(2)))

	none, err := repo.GetSettlement(ctx, "u1", "s1", "2026-03-09")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGenerationRunRepo_Transitions(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewGenerationRunRepository(db)
	ctx := context.Background()

	run := &model.GenerationRun{StoreID: "s1", WeekStart: "2026-03-02", WeekEnd: "2026-03-08", Status: model.RunStatusCompleted}
	failed := &model.GenerationRun{StoreID: "s1", WeekStart: "2026-03-02", WeekEnd: "2026-03-08", Status: model.RunStatusFailed}
	require.NoError(t, repo.Create(ctx, run))
	require.NoError(t, repo.Create(ctx, failed))

	// 只能从已发布归档
	archived, err := repo.ArchivePublishedInRange(ctx, "2026-03-02", "2026-03-08")
	require.NoError(t, err)
	assert.Empty(t, archived)

	n, err := repo.MarkPublished(ctx, []string{run.ID, failed.ID}, run.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	archived, err = repo.ArchivePublishedInRange(ctx, "2026-03-02", "2026-03-08")
	require.NoError(t, err)
	assert.Equal(t, []string{run.ID}, archived)

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusArchived, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestEmployeeRepo_ListStoreAdmins(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := context.Background()

	for _, e := range []*model.Employee{
		{StoreID: "s1", FullName: "Ada", Role: model.RoleAdmin, IsActive: true},
		{StoreID: "s2", FullName: "Bob", Role: model.RoleAdmin, IsActive: true},
		{StoreID: "", FullName: "Cid", Role: model.RoleSuperAdmin, IsActive: true},
		{StoreID: "s1", FullName: "Dee", Role: model.RoleEmployee, IsActive: true},
		{StoreID: "s1", FullName: "Eve", Role: model.RoleAdmin, IsActive: false},
	} {
		require.NoError(t, repo.Create(ctx, e))
	}

	admins, err := repo.ListStoreAdmins(ctx, "s1")
	require.NoError(t, err)
	names := make([]string, 0, len(admins))
	for _, a := range admins {
		names = append(names, a.FullName)
	}
	assert.Equal(t, []string{"Ada", "Cid"}, names)
}

func TestGenerationRunRepo_MarkPublishedInStoreWeek(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewGenerationRunRepository(db)
	ctx := context.Background()

	own := &model.GenerationRun{StoreID: "s1", WeekStart: "2026-03-02", WeekEnd: "2026-03-08", Status: model.RunStatusCompleted}
	foreign := &model.GenerationRun{StoreID: "s2", WeekStart: "2026-03-02", WeekEnd: "2026-03-08", Status: model.RunStatusCompleted}
	require.NoError(t, repo.Create(ctx, own))
	require.NoError(t, repo.Create(ctx, foreign))

	runs, err := repo.ListByStoreWeek(ctx, "s1", "2026-03-02")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, own.ID, runs[0].ID)

	n, err := repo.MarkPublishedInStoreWeek(ctx, []string{own.ID, foreign.ID}, "s1", "2026-03-02", own.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
}

func TestGenerationRunRepo_MarkFailed_OnlyPending(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewGenerationRunRepository(db)
	ctx := context.Background()

	pending := &model.GenerationRun{StoreID: "s1", WeekStart: "2026-03-02", WeekEnd: "2026-03-08", Status: model.RunStatusPending}
	done := &model.GenerationRun{StoreID: "s1", WeekStart: "2026-03-02", WeekEnd: "2026-03-08", Status: model.RunStatusCompleted}
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, done))

	require.NoError(t, repo.MarkFailed(ctx, pending.ID, "solver timeout"))
	require.NoError(t, repo.MarkFailed(ctx, done.ID, "solver timeout"))

	got, err := repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "solver timeout", got.ErrorMessage)

	got, err = repo.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
}
