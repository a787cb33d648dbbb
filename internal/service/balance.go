package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storeshift_v1_202610/internal/model"
)

// ==================== 工时与余额计算 ====================

var (
	maxWeeklyDelta = decimal.NewFromInt(5)
	minWeeklyDelta = decimal.NewFromInt(-5)
)

// parseHour 取 HH:MM 的小时部分
func parseHour(hhmm string) (int, error) {
	hourPart, _, _ := strings.Cut(strings.TrimSpace(hhmm), ":")
	h, err := strconv.Atoi(hourPart)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("%w: 无效时间 %q", ErrValidation, hhmm)
	}
	return h, nil
}

// ShiftHours 班次工时，只取整点
// 结束时间为 00 视为 24 点
// 结束早于开始（如 22:00-06:00）按跨午夜加 24 小时，属于对 end-start 规则的有意扩展
func ShiftHours(start, end string) (int, error) {
	startHour, err := parseHour(start)
	if err != nil {
		return 0, err
	}
	endHour, err := parseHour(end)
	if err != nil {
		return 0, err
	}
	if endHour == 0 {
		endHour = 24
	}
	if endHour < startHour {
		endHour += 24
	}
	return endHour - startHour, nil
}

// SumWorkedHours 汇总工作班次工时，休息日和缺时间的行不计
func SumWorkedHours(shifts []model.Shift) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := range shifts {
		s := &shifts[i]
		if !s.IsWorkShift() {
			continue
		}
		h, err := ShiftHours(*s.StartTime, *s.EndTime)
		if err != nil {
			return decimal.Zero, fmt.Errorf("班次 %s: %w", s.ID, err)
		}
		total = total.Add(decimal.NewFromInt(int64(h)))
	}
	return total, nil
}

// ClampDelta clamp(total - contract, -5, +5)
func ClampDelta(total, contract decimal.Decimal) decimal.Decimal {
	delta := total.Sub(contract)
	if delta.GreaterThan(maxWeeklyDelta) {
		return maxWeeklyDelta
	}
	if delta.LessThan(minWeeklyDelta) {
		return minWeeklyDelta
	}
	return delta
}

// ContractHoursOf 员工合同工时，未设置取默认 40
func ContractHoursOf(e *model.Employee) decimal.Decimal {
	if e == nil || !e.WeeklyContractHours.Valid {
		return model.DefaultContractHours
	}
	return e.WeeklyContractHours.Decimal
}
