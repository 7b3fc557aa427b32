package tui

import (
	"encoding/json"
	"fmt"
	"sort"

	table "github.com/charmbracelet/bubbles/table"

	"mapview/internal/engine"
)

func propertyColumns(width int) []table.Column {
	keyW := max(8, width/3)
	return []table.Column{
		{Title: "property", Width: keyW},
		{Title: "value", Width: max(8, width-keyW-2)},
	}
}

// propertyRows lists a feature's properties in key order. Nested values are shown as JSON.
func propertyRows(f engine.Feature) []table.Row {
	keys := make([]string, 0, len(f.Properties))
	for k := range f.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]table.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, table.Row{k, formatValue(f.Properties[k])})
	}
	return rows
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(bs)
	}
}

// syncFeatures resets the highlighted feature when a new click replaced the selection and
// refreshes the property table.
func (m *Model) syncFeatures() {
	sel := m.ctrl.Selection()
	reset := false
	if v := sel.Version(); v != m.selVersion {
		m.selVersion = v
		m.featureIdx = 0
		reset = true
	}
	features := sel.Features()
	if m.featureIdx >= len(features) {
		m.featureIdx = 0
	}
	var rows []table.Row
	if len(features) > 0 {
		rows = propertyRows(features[m.featureIdx])
	}
	m.tbl.SetRows(rows)
	if reset || m.tbl.Cursor() >= len(rows) {
		m.tbl.SetCursor(0)
	}
}

func (m *Model) cycleFeature(delta int) {
	n := m.ctrl.Selection().Count()
	if n == 0 {
		return
	}
	m.featureIdx = (m.featureIdx + delta + n) % n
	m.syncFeatures()
	m.tbl.SetCursor(0)
}
