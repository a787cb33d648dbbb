package service

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"storeshift_v1_202610/internal/api/dto"
	"storeshift_v1_202610/pkg/utils"
)

var (
	digestMarkdown     goldmark.Markdown
	digestMarkdownOnce sync.Once
)

func getDigestMarkdown() goldmark.Markdown {
	digestMarkdownOnce.Do(func() {
		digestMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))
	})
	return digestMarkdown
}

// escapeCell 表格单元格里的竖线会破坏表格
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// buildDigestMarkdown 单店生成结果的邮件正文（markdown）
func buildDigestMarkdown(res dto.StoreGenerationResult, week utils.WeekRange, link string) string {
	var b strings.Builder

	switch {
	case res.Status == dto.GenerationFailed:
		fmt.Fprintf(&b, "## Schedule generation failed for %s\n\n", escapeCell(res.StoreName))
		fmt.Fprintf(&b, "Week **%s** to **%s** could not be generated. It will be retried on the next weekly run.\n\n", week.Start, week.End)
		fmt.Fprintf(&b, "Error: `%s`\n", strings.ReplaceAll(res.Error, "`", "'"))
		return b.String()
	case res.TotalUncovered > 0:
		fmt.Fprintf(&b, "## Warning: %d uncovered slot(s) for %s\n\n", res.TotalUncovered, escapeCell(res.StoreName))
	default:
		fmt.Fprintf(&b, "## Schedule ready for %s\n\n", escapeCell(res.StoreName))
	}

	fmt.Fprintf(&b, "Draft schedule for **%s** to **%s**: %d shift(s), %d day(s) off.\n\n", week.Start, week.End, res.ShiftsCreated, res.DaysOffCreated)

	if len(res.Uncovered) > 0 {
		depts := make([]string, 0, len(res.Uncovered))
		for d := range res.Uncovered {
			depts = append(depts, d)
		}
		sort.Strings(depts)

		b.WriteString("| Department | Uncovered |\n|---|---:|\n")
		for _, d := range depts {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(d), res.Uncovered[d])
		}
		b.WriteString("\n")
	} else {
		b.WriteString("All departments are fully covered.\n\n")
	}

	fmt.Fprintf(&b, "[Review and publish](%s)\n", link)
	return b.String()
}

// digestSubject 邮件标题
func digestSubject(res dto.StoreGenerationResult, week utils.WeekRange) string {
	switch {
	case res.Status == dto.GenerationFailed:
		return fmt.Sprintf("[Action needed] Schedule generation failed: %s (%s)", res.StoreName, week.Start)
	case res.TotalUncovered > 0:
		return fmt.Sprintf("[Warning] %d uncovered slots: %s (%s)", res.TotalUncovered, res.StoreName, week.Start)
	default:
		return fmt.Sprintf("Schedule ready: %s (%s)", res.StoreName, week.Start)
	}
}

// RenderDigest 生成邮件标题和 HTML 正文
func RenderDigest(res dto.StoreGenerationResult, week utils.WeekRange, link string) (string, string, error) {
	var buf bytes.Buffer
	if err := getDigestMarkdown().Convert([]byte(buildDigestMarkdown(res, week, link)), &buf); err != nil {
		return "", "", fmt.Errorf("渲染邮件失败: %w", err)
	}
	return digestSubject(res, week), buf.String(), nil
}
