// Package importer 解析转化 CSV 并定时导入收件目录
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"affiliatelink-go/internal/service"
)

// CSV 列名
const (
	ColumnAffiliateID     = "affiliate_id"
	ColumnTotalConversion = "total_conversion"
	ColumnDelta           = "delta"
)

// ErrMissingColumns 表头缺少必需列
var ErrMissingColumns = errors.New("csv header must contain affiliate_id and total_conversion")

// ParseCSV 按表头定位列并读取全部数据行。
// 行号为文件中的物理行号（表头为第 1 行，空行计入）；列数不齐的行保留，缺失的值由合并时跳过。
func ParseCSV(r io.Reader) ([]service.ConversionRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingColumns
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idCol, deltaCol := -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case ColumnAffiliateID:
			idCol = i
		case ColumnTotalConversion, ColumnDelta:
			if deltaCol < 0 {
				deltaCol = i
			}
		}
	}
	if idCol < 0 || deltaCol < 0 {
		return nil, ErrMissingColumns
	}

	rows := make([]service.ConversionRow, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, service.ConversionRow{
			Line:        line,
			AffiliateID: field(record, idCol),
			Delta:       field(record, deltaCol),
		})
	}
	return rows, nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
