package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeshift_v1_202610/internal/model"
)

func TestShiftHours(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"regular", "09:00", "17:00", 8},
		{"midnight end", "20:00", "00:00", 4},
		{"overnight", "22:00", "06:00", 8},
		{"minutes ignored", "09:30", "13:45", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShiftHours(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ShiftHours("nine", "17:00")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClampDelta(t *testing.T) {
	forty := decimal.NewFromInt(40)

	assert.True(t, ClampDelta(decimal.NewFromInt(48), forty).Equal(decimal.NewFromInt(5)))
	assert.True(t, ClampDelta(decimal.NewFromInt(30), forty).Equal(decimal.NewFromInt(-5)))
	assert.True(t, ClampDelta(decimal.NewFromInt(42), forty).Equal(decimal.NewFromInt(2)))
	assert.True(t, ClampDelta(forty, forty).IsZero())
}

func TestSumWorkedHours_SkipsDayOff(t *testing.T) {
	s := func(v string) *string { return &v }
	shifts := []model.Shift{
		{StartTime: s("09:00"), EndTime: s("17:00")},
		{StartTime: s("20:00"), EndTime: s("00:00")},
		{IsDayOff: true},
		{IsDayOff: true, StartTime: s("09:00"), EndTime: s("17:00")}, // 外部写入的脏数据
		{StartTime: s("09:00")}, // 缺结束时间
	}
	total, err := SumWorkedHours(shifts)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(12)), "total = %s", total)

	// 带时间的休息日单独计算也是 0
	total, err = SumWorkedHours([]model.Shift{{IsDayOff: true, StartTime: s("22:00"), EndTime: s("06:00")}})
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "total = %s", total)
}

func TestContractHoursOf(t *testing.T) {
	assert.True(t, ContractHoursOf(nil).Equal(decimal.NewFromInt(40)))

	e := &model.Employee{WeeklyContractHours: decimal.NewNullDecimal(decimal.NewFromInt(32))}
	assert.True(t, ContractHoursOf(e).Equal(decimal.NewFromInt(32)))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 200, HTTPStatus(nil))
	assert.Equal(t, 200, HTTPStatus(ErrNoOp))
	assert.Equal(t, 400, HTTPStatus(ErrValidation))
	assert.Equal(t, 401, HTTPStatus(ErrUnauthorized))
	assert.Equal(t, 403, HTTPStatus(ErrForbidden))
	assert.Equal(t, 404, HTTPStatus(ErrNotFound))
	assert.Equal(t, 500, HTTPStatus(assert.AnError))
}
