package catalog

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

const maxCellWidth = 50

// FormatResult renders an execution result as text suitable for both
// terminal display and answer-composition prompts. Empty result sets
// are still reported as successful.
func FormatResult(result *ExecutionResult) string {
	if result == nil || result.RowCount == 0 {
		return "✓ Query executed successfully but returned no results."
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	configs := make([]table.ColumnConfig, len(result.Columns))
	for i := range result.Columns {
		configs[i] = table.ColumnConfig{Number: i + 1, WidthMax: maxCellWidth}
	}
	t.SetColumnConfigs(configs)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, values := range result.Rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	return fmt.Sprintf("✓ Query returned %d row(s):\n\n%s", result.RowCount, t.Render())
}

// FormatError renders a failed execution for terminal display.
func FormatError(err error) string {
	return fmt.Sprintf("❌ Error: %v", err)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case driver.Valuer:
		// Numeric and other composite pgtype values render through
		// their driver representation.
		if dv, err := val.Value(); err == nil {
			return fmt.Sprintf("%v", dv)
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
