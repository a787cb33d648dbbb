package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeshift_v1_202610/internal/model"
)

func TestPublish_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.publication()

	run := env.addRun(t, "s1", "2026-03-02", "2026-03-08")
	env.addShift(t, workShift("s1", "u1", "2026-03-02", "09:00", "17:00", &run.ID))
	env.addShift(t, workShift("s1", "u1", "2026-03-03", "09:00", "17:00", &run.ID))
	env.addShift(t, workShift("s1", "u2", "2026-03-03", "12:00", "20:00", &run.ID))

	res, err := svc.Publish(ctx, adminActor, run.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.PublishedCount)
	assert.Equal(t, 2, res.AffectedEmployees)
	assert.Equal(t, 2, res.NotificationsSent)
	assert.NotContains(t, res.Message, "left unchanged")

	got, err := env.uow.Runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusPublished, got.Status)
	assert.NotNil(t, got.CompletedAt)

	// 第二次调用：NoOp，计数为 0，状态不变
	res, err = svc.Publish(ctx, adminActor, run.ID)
	assert.ErrorIs(t, err, ErrNoOp)
	require.NotNil(t, res)
	assert.Equal(t, int64(0), res.PublishedCount)
	assert.Equal(t, map[string]int{model.ShiftStatusPublished: 3}, env.shiftStatuses(t, "s1"))

	// 每个员工一条通知，第二次调用不再通知
	assert.Equal(t, []string{"u1", "u2"}, env.notifier.notifiedUsers())

	audits, err := env.uow.Audits.ListByEntity(ctx, model.AuditEntityGenerationRun, run.ID)
	require.NoError(t, err)
	assert.Len(t, audits, 1)
	assert.Equal(t, model.AuditActionRunPublished, audits[0].Action)
}

func TestPublish_AuthBeforeLookup(t *testing.T) {
	env := newTestEnv(t)
	svc := env.publication()
	missing := uuid.NewString()

	_, err := svc.Publish(context.Background(), Actor{}, missing)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Publish(context.Background(), Actor{UserID: "u1", Role: model.RoleManager}, missing)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Publish(context.Background(), adminActor, missing)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Publish(context.Background(), adminActor, "not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPublish_NotificationFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.failUsers["u2"] = true
	svc := env.publication()

	run := env.addRun(t, "s1", "2026-03-02", "2026-03-08")
	env.addShift(t, workShift("s1", "u1", "2026-03-02", "09:00", "17:00", &run.ID))
	env.addShift(t, workShift("s1", "u2", "2026-03-02", "09:00", "17:00", &run.ID))

	res, err := svc.Publish(context.Background(), adminActor, run.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.PublishedCount)
	assert.Equal(t, 1, res.NotificationsSent)
	assert.Equal(t, 1, res.NotificationsFailed)
}

func TestPublish_ConcurrentRace(t *testing.T) {
	env := newTestEnv(t)
	svc := env.publication()

	run := env.addRun(t, "s1", "2026-03-02", "2026-03-08")
	for i, u := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		env.addShift(t, workShift("s1", u, fmt.Sprintf("2026-03-%02d", 2+i%5), "09:00", "17:00", &run.ID))
	}

	var wg sync.WaitGroup
	counts := make([]int64, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Publish(context.Background(), adminActor, run.ID)
			errs[i] = err
			if res != nil {
				counts[i] = res.PublishedCount
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(6), counts[0]+counts[1])
	noops := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrNoOp)
			noops++
		}
	}
	assert.Equal(t, 1, noops)
	assert.Equal(t, map[string]int{model.ShiftStatusPublished: 6}, env.shiftStatuses(t, "s1"))
}

func TestPublish_FailedRunKeepsStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.publication()

	run := env.addRun(t, "s1", "2026-03-02", "2026-03-08")
	require.NoError(t, env.db.Model(&model.GenerationRun{}).Where("id = ?", run.ID).Update("status", model.RunStatusFailed).Error)
	env.addShift(t, workShift("s1", "u1", "2026-03-02", "09:00", "17:00", &run.ID))

	res, err := svc.Publish(ctx, adminActor, run.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.PublishedCount)
	assert.Contains(t, res.Message, "run status failed left unchanged")

	got, err := env.uow.Runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, map[string]int{model.ShiftStatusPublished: 1}, env.shiftStatuses(t, "s1"))
}
