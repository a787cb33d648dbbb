package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
	"storeshift_v1_202610/pkg/mailer"
)

// ==================== 通知端口 ====================

// Notifier 通知出口
type Notifier interface {
	// Notify 站内通知
	Notify(ctx context.Context, userID, title, message, link string, storeID *string) error
	// EmailDigest 发送 HTML 邮件
	EmailDigest(ctx context.Context, email, subject, html string) error
}

// AppNotifier 站内信写库 + HTTP 邮件网关
type AppNotifier struct {
	notifications repository.NotificationRepository
	mailer        *mailer.Mailer
}

// NewAppNotifier mail 为 nil 时只写站内信
func NewAppNotifier(notifications repository.NotificationRepository, mail *mailer.Mailer) *AppNotifier {
	return &AppNotifier{notifications: notifications, mailer: mail}
}

func (n *AppNotifier) Notify(ctx context.Context, userID, title, message, link string, storeID *string) error {
	return n.notifications.Create(ctx, &model.Notification{
		UserID:  userID,
		StoreID: storeID,
		Title:   title,
		Message: message,
		Link:    link,
	})
}

func (n *AppNotifier) EmailDigest(ctx context.Context, email, subject, html string) error {
	if n.mailer == nil {
		logger.GetLogger().Debugf("[Notify] 邮件未启用，跳过 %s", email)
		return nil
	}
	return n.mailer.Send(ctx, email, subject, html)
}

// NoopNotifier 丢弃所有通知
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string, string, string, string, *string) error {
	return nil
}

func (NoopNotifier) EmailDigest(context.Context, string, string, string) error {
	return nil
}

// ==================== 分发 ====================

// Delivery 发给单个员工的通知
type Delivery struct {
	UserID  string
	Email   string
	StoreID *string
	Title   string
	Message string
	Link    string
}

// FanoutResult 分发统计
type FanoutResult struct {
	Sent   int
	Failed int
}

// NotificationService 并发分发通知，单个收件人失败不影响其他人，也不向调用方返回错误
type NotificationService struct {
	notifier    Notifier
	concurrency int
}

// NewNotificationService 创建分发服务
func NewNotificationService(notifier Notifier, concurrency int) *NotificationService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &NotificationService{notifier: notifier, concurrency: concurrency}
}

// fanout 有界并发执行 send，统计成功失败
func (s *NotificationService) fanout(ctx context.Context, n int, send func(ctx context.Context, i int) error, label func(i int) string) FanoutResult {
	var sent, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := send(ctx, i); err != nil {
				failed.Add(1)
				logger.LogError("notify", "fanout", "deliver to "+label(i), nil, err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return FanoutResult{Sent: int(sent.Load()), Failed: int(failed.Load())}
}

// NotifyEmployees 站内信 + 有邮箱时补发邮件
func (s *NotificationService) NotifyEmployees(ctx context.Context, deliveries []Delivery) FanoutResult {
	return s.fanout(ctx, len(deliveries), func(ctx context.Context, i int) error {
		d := deliveries[i]
		if err := s.notifier.Notify(ctx, d.UserID, d.Title, d.Message, d.Link, d.StoreID); err != nil {
			return fmt.Errorf("站内信: %w", err)
		}
		if d.Email == "" {
			return nil
		}
		body := "<p>" + html.EscapeString(d.Message) + "</p>"
		if d.Link != "" {
			body += fmt.Sprintf(`<p><a href="%s">%s</a></p>`, html.EscapeString(d.Link), html.EscapeString(d.Link))
		}
		if err := s.notifier.EmailDigest(ctx, d.Email, d.Title, body); err != nil {
			return fmt.Errorf("邮件: %w", err)
		}
		return nil
	}, func(i int) string { return deliveries[i].UserID })
}

// EmailAll 同一封邮件发给多个收件人
func (s *NotificationService) EmailAll(ctx context.Context, emails []string, subject, htmlBody string) FanoutResult {
	return s.fanout(ctx, len(emails), func(ctx context.Context, i int) error {
		return s.notifier.EmailDigest(ctx, emails[i], subject, htmlBody)
	}, func(i int) string { return emails[i] })
}

// ==================== 消息构建 ====================

// employeeShiftSummary 单个员工在一次流转中的班次
type employeeShiftSummary struct {
	UserID    string
	StoreID   string
	Count     int
	FirstDate string
}

// summarizeByEmployee 按员工聚合本次流转的班次，结果按 user_id 排序
func summarizeByEmployee(shifts []model.Shift) []employeeShiftSummary {
	byUser := make(map[string]*employeeShiftSummary)
	for i := range shifts {
		s := &shifts[i]
		sum, ok := byUser[s.UserID]
		if !ok {
			sum = &employeeShiftSummary{UserID: s.UserID, StoreID: s.StoreID, FirstDate: s.Date}
			byUser[s.UserID] = sum
		}
		sum.Count++
		if s.Date < sum.FirstDate {
			sum.FirstDate = s.Date
		}
	}

	out := make([]employeeShiftSummary, 0, len(byUser))
	for _, sum := range byUser {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// buildScheduleDeliveries 每个员工一条消息
func buildScheduleDeliveries(summaries []employeeShiftSummary, directory map[string]*model.Employee, title, link string) []Delivery {
	deliveries := make([]Delivery, 0, len(summaries))
	for _, sum := range summaries {
		storeID := sum.StoreID
		d := Delivery{
			UserID:  sum.UserID,
			StoreID: &storeID,
			Title:   title,
			Message: fmt.Sprintf("%d shift(s) on your schedule were published, starting %s.", sum.Count, sum.FirstDate),
			Link:    link,
		}
		if e, ok := directory[sum.UserID]; ok && e.Email != "" {
			d.Email = e.Email
		}
		deliveries = append(deliveries, d)
	}
	return deliveries
}

func userIDsOf(summaries []employeeShiftSummary) []string {
	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.UserID)
	}
	return ids
}

// ==================== 流转后通知 ====================

// batchNotifier 回读某次条件更新真正流转的班次，每个员工发一条通知
type batchNotifier struct {
	shifts     repository.ShiftRepository
	directory  *DirectoryService
	notifier   *NotificationService
	appBaseURL string
}

func newBatchNotifier(shifts repository.ShiftRepository, directory *DirectoryService, notifier *NotificationService, appBaseURL string) *batchNotifier {
	return &batchNotifier{shifts: shifts, directory: directory, notifier: notifier, appBaseURL: appBaseURL}
}

// scheduleLink 员工查看排班的前端地址
func scheduleLink(baseURL, storeID, weekStart string) string {
	return fmt.Sprintf("%s/schedule?store=%s&week=%s", baseURL, storeID, weekStart)
}

// notify 返回受影响员工数和分发统计，错误只记录
func (b *batchNotifier) notify(ctx context.Context, batch, storeID, weekStart, title string) (int, FanoutResult) {
	shifts, err := b.shifts.ListByBatch(ctx, batch)
	if err != nil {
		logger.LogError("notify", "batchNotifier.notify", "list batch shifts", batch, err)
		return 0, FanoutResult{}
	}

	summaries := summarizeByEmployee(shifts)
	if len(summaries) == 0 {
		return 0, FanoutResult{}
	}

	directory, err := b.directory.Lookup(ctx, userIDsOf(summaries))
	if err != nil {
		// 查不到邮箱也照样发站内信
		logger.LogError("notify", "batchNotifier.notify", "lookup employees", batch, err)
		directory = nil
	}

	deliveries := buildScheduleDeliveries(summaries, directory, title, scheduleLink(b.appBaseURL, storeID, weekStart))
	return len(summaries), b.notifier.NotifyEmployees(ctx, deliveries)
}
