package report

import (
	"io"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/deusflow/aidaily/internal/enrich"
	"github.com/deusflow/aidaily/internal/news"
)

const workbookSheet = "每日精选"

// WriteWorkbook writes a spreadsheet with one row per item in ranked order
// and one column per platform.
func WriteWorkbook(w io.Writer, items []news.EnrichedItem, platforms []enrich.Platform) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(workbookSheet)
	if err != nil {
		return err
	}

	headers := []string{"排名", "标题", "来源", "分类", "质量评分", "发布时间", "链接", "AI处理", "关键数据", "一句话总结"}
	for _, p := range platforms {
		headers = append(headers, p.Label+"文案")
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.Value = h
	}

	for i, it := range items {
		row := sheet.AddRow()

		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(it.Title)
		row.AddCell().SetString(it.Source)
		row.AddCell().SetString(it.Category)
		row.AddCell().SetInt(it.QualityScore)
		row.AddCell().SetString(it.Published)
		row.AddCell().SetString(it.Link)

		processed := "否"
		if it.AIProcessed {
			processed = "是"
		}
		row.AddCell().SetString(processed)
		row.AddCell().SetString(strings.Join(it.KeyData, "; "))
		row.AddCell().SetString(it.SimpleSummary)

		for _, p := range platforms {
			text, _ := copyFor(it, p.ID)
			row.AddCell().SetString(text)
		}
	}

	return file.Write(w)
}
