package commands

import (
	"fmt"

	"github.com/leapstack-labs/baconql/internal/catalog"
	"github.com/leapstack-labs/baconql/internal/cli/output"
)

// renderQueryResult writes res as a table, or as a list of row objects in
// structured modes.
func renderQueryResult(r *output.Renderer, res *catalog.QueryResult) error {
	if r.EffectiveMode() == output.ModeJSON || r.EffectiveMode() == output.ModeYAML {
		objects := make([]map[string]any, 0, len(res.Rows))
		for _, row := range res.Rows {
			obj := make(map[string]any, len(res.Columns))
			for i, col := range res.Columns {
				obj[col] = row[i]
			}
			objects = append(objects, obj)
		}
		_, err := r.Structured(objects)
		return err
	}

	if len(res.Rows) == 0 {
		r.Muted("(0 rows)")
		return nil
	}

	rows := make([][]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		rows = append(rows, cells)
	}
	r.Table(res.Columns, rows)
	r.Muted(fmt.Sprintf("(%d rows)", len(res.Rows)))
	return nil
}

func renderColumns(r *output.Renderer, table string, cols []catalog.ColumnInfo) error {
	if ok, err := r.Structured(cols); ok {
		return err
	}

	r.Header(2, table)
	rows := make([][]string, 0, len(cols))
	for _, col := range cols {
		nullable := "YES"
		if !col.Nullable {
			nullable = "NO"
		}
		def := col.Default
		if col.PK {
			if def != "" {
				def += " "
			}
			def += "(primary key)"
		}
		rows = append(rows, []string{col.Name, col.Type, nullable, def})
	}
	r.Table([]string{"Column", "Type", "Nullable", "Default"}, rows)
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
