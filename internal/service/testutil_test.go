package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
	"storeshift_v1_202610/pkg/cache"
)

// ==================== 测试辅助 ====================

func setupScheduleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	// :memory: 库按连接隔离
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

var adminActor = Actor{UserID: "admin-1", UserName: "Ada Admin", Role: model.RoleAdmin}

func ptr(s string) *string { return &s }

// fakeNotifier 记录通知，可按用户/邮箱注入失败
type fakeNotifier struct {
	mu        sync.Mutex
	notified  []string
	emailed   []string
	subjects  []string
	failUsers map[string]bool
	failMail  map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failUsers: map[string]bool{}, failMail: map[string]bool{}}
}

func (f *fakeNotifier) Notify(_ context.Context, userID, _, _, _ string, _ *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUsers[userID] {
		return errors.New("notify down")
	}
	f.notified = append(f.notified, userID)
	return nil
}

func (f *fakeNotifier) EmailDigest(_ context.Context, email, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMail[email] {
		return errors.New("smtp down")
	}
	f.emailed = append(f.emailed, email)
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakeNotifier) notifiedUsers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.notified...)
	sort.Strings(out)
	return out
}

// testEnv 组装服务
type testEnv struct {
	db        *gorm.DB
	uow       *repository.ScheduleUnitOfWork
	employees repository.EmployeeRepository
	stores    repository.StoreRepository
	directory *DirectoryService
	notifier  *fakeNotifier
	notifySvc *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupScheduleTestDB(t)
	employees := repository.NewEmployeeRepository(db)
	fake := newFakeNotifier()
	return &testEnv{
		db:        db,
		uow:       repository.NewScheduleUnitOfWork(db),
		employees: employees,
		stores:    repository.NewStoreRepository(db),
		directory: NewDirectoryService(employees, cache.NewStore(nil)),
		notifier:  fake,
		notifySvc: NewNotificationService(fake, 4),
	}
}

func (e *testEnv) publication() *PublicationService {
	return NewPublicationService(e.uow, e.directory, e.notifySvc, "https://app.test")
}

func (e *testEnv) patches() *PatchApprovalService {
	return NewPatchApprovalService(e.uow, e.directory, e.notifySvc, "https://app.test")
}

func (e *testEnv) archival() *ArchivalService {
	return NewArchivalService(e.uow, e.directory)
}

func (e *testEnv) addEmployee(t *testing.T, id, storeID, role string, contract *int64) {
	emp := &model.Employee{StoreID: storeID, FullName: "Emp " + id, Email: id + "@shop.test", Role: role, IsActive: true}
	emp.ID = id
	if contract != nil {
		emp.WeeklyContractHours = decimal.NewNullDecimal(decimal.NewFromInt(*contract))
	}
	if err := e.employees.Create(context.Background(), emp); err != nil {
		t.Fatalf("创建员工失败: %v", err)
	}
}

func (e *testEnv) addRun(t *testing.T, storeID, weekStart, weekEnd string) *model.GenerationRun {
	run := &model.GenerationRun{StoreID: storeID, WeekStart: weekStart, WeekEnd: weekEnd, Status: model.RunStatusCompleted}
	if err := e.uow.Runs.Create(context.Background(), run); err != nil {
		t.Fatalf("创建批次失败: %v", err)
	}
	return run
}

func (e *testEnv) addShift(t *testing.T, s model.Shift) model.Shift {
	if s.Status == "" {
		s.Status = model.ShiftStatusDraft
	}
	if s.Department == "" {
		s.Department = "floor"
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("班次数据非法: %v", err)
	}
	shifts := []model.Shift{s}
	if err := e.uow.Shifts.CreateBatch(context.Background(), shifts); err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}
	return shifts[0]
}

func workShift(storeID, userID, date, start, end string, runID *string) model.Shift {
	return model.Shift{StoreID: storeID, UserID: userID, Date: date, StartTime: ptr(start), EndTime: ptr(end), GenerationRunID: runID}
}

func (e *testEnv) shiftStatuses(t *testing.T, storeID string) map[string]int {
	shifts, err := e.uow.Shifts.ListByStoreRange(context.Background(), storeID, "0000-01-01", "9999-12-31")
	if err != nil {
		t.Fatalf("查询班次失败: %v", err)
	}
	out := map[string]int{}
	for _, s := range shifts {
		out[s.Status]++
	}
	return out
}

func (e *testEnv) balanceOf(t *testing.T, userID, storeID string) decimal.Decimal {
	b, err := e.uow.Balances.Get(context.Background(), userID, storeID)
	if err != nil {
		t.Fatalf("查询余额失败: %v", err)
	}
	if b == nil {
		return decimal.Zero
	}
	return b.CurrentBalance
}
