package utils

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// WeekRange 周一至周日的日期区间（闭区间）
type WeekRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (w WeekRange) String() string {
	return w.Start + ".." + w.End
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q: %w", s, err)
	}
	return t, nil
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// truncateDay 去掉时分秒，保留原时区的日历日
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MondayOf 返回 t 所在 ISO 周的周一
func MondayOf(t time.Time) time.Time {
	day := truncateDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // 周一=0 ... 周日=6
	return day.AddDate(0, 0, -offset)
}

// WeekOf 返回 t 所在的周一至周日
func WeekOf(t time.Time) WeekRange {
	monday := MondayOf(t)
	return WeekRange{
		Start: FormatDate(monday),
		End:   FormatDate(monday.AddDate(0, 0, 6)),
	}
}

// ArchiveWeek 返回截止到 asOf 的最近一个完整周
// asOf 为周日时即为本周，否则为上一个周日结束的那一周
func ArchiveWeek(asOf time.Time) WeekRange {
	day := truncateDay(asOf)
	back := int(day.Weekday()) // 周日=0
	sunday := day.AddDate(0, 0, -back)
	return WeekRange{
		Start: FormatDate(sunday.AddDate(0, 0, -6)),
		End:   FormatDate(sunday),
	}
}

// NextMonday 返回 now 之后的下一个周一（now 为周一时返回下周一）
func NextMonday(now time.Time) time.Time {
	return MondayOf(now).AddDate(0, 0, 7)
}
