package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/pkg/utils"
)

// ==================== 排班生成端口 ====================

// UncoveredSlot 无人覆盖的时段
type UncoveredSlot struct {
	Date       string `json:"date"`
	Department string `json:"department"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// DepartmentOutcome 单个部门的生成统计
type DepartmentOutcome struct {
	Department string `json:"department"`
	Shifts     int    `json:"shifts"`
	Uncovered  int    `json:"uncovered"`
}

// GenerationOutcome 生成器返回值，草稿班次和生成批次由生成器自己写库
type GenerationOutcome struct {
	RunID          string              `json:"run_id"`
	ShiftsCreated  int                 `json:"shifts_created"`
	DaysOffCreated int                 `json:"days_off_created"`
	UncoveredSlots []UncoveredSlot     `json:"uncovered_slots"`
	Departments    []DepartmentOutcome `json:"departments"`
}

// UncoveredByDepartment 按部门汇总未覆盖数，部门统计缺失时用时段明细计数
func (o *GenerationOutcome) UncoveredByDepartment() map[string]int {
	out := make(map[string]int)
	if len(o.Departments) > 0 {
		for _, d := range o.Departments {
			if d.Uncovered > 0 {
				out[d.Department] += d.Uncovered
			}
		}
		return out
	}
	for _, slot := range o.UncoveredSlots {
		out[slot.Department]++
	}
	return out
}

// Generator 排班生成器
type Generator interface {
	Generate(ctx context.Context, store model.Store, department, weekStart string) (*GenerationOutcome, error)
}

// ==================== HTTP 适配器 ====================

// HTTPGeneratorConfig 外部排班引擎配置
type HTTPGeneratorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPGenerator 通过 HTTP 调用外部排班引擎
type HTTPGenerator struct {
	client *resty.Client
}

// NewHTTPGenerator 创建 HTTP 生成器
func NewHTTPGenerator(cfg HTTPGeneratorConfig) *HTTPGenerator {
	client := utils.NewAPIClient(cfg.BaseURL, cfg.Timeout, false).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("x-api-key", cfg.APIKey)
	}
	return &HTTPGenerator{client: client}
}

type generateReq struct {
	StoreID    string `json:"store_id"`
	Department string `json:"department"`
	WeekStart  string `json:"week_start"`
}

type generateErrResp struct {
	Error string `json:"error"`
	RunID string `json:"run_id"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, store model.Store, department, weekStart string) (*GenerationOutcome, error) {
	var outcome GenerationOutcome
	var errResp generateErrResp

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(generateReq{StoreID: store.ID, Department: department, WeekStart: weekStart}).
		SetResult(&outcome).
		SetError(&errResp).
		Post("/generate")
	if err != nil {
		return nil, fmt.Errorf("排班引擎请求失败: %w", err)
	}
	if resp.IsError() {
		// 失败时可能已经创建了批次，把批次ID带回给调用方
		var partial *GenerationOutcome
		if errResp.RunID != "" {
			partial = &GenerationOutcome{RunID: errResp.RunID}
		}
		if errResp.Error != "" {
			return partial, fmt.Errorf("排班引擎错误 [%d]: %s", resp.StatusCode(), errResp.Error)
		}
		return partial, fmt.Errorf("排班引擎错误 [%d]: %s", resp.StatusCode(), resp.String())
	}
	return &outcome, nil
}
