package tui

import (
	list "github.com/charmbracelet/bubbles/list"
)

type styleItem struct {
	title, desc string
	index       int
}

func (s styleItem) Title() string       { return s.title }
func (s styleItem) Description() string { return s.desc }
func (s styleItem) FilterValue() string { return s.title }

// openPicker fills the list from the configured style options and highlights the active one.
func (m *Model) openPicker() {
	var items []list.Item
	for i, o := range m.ctrl.Styles() {
		desc := o.ID
		switch {
		case o.URL == "":
			desc += "  (bundled)"
		case o.LocalFileMissing():
			desc += "  (file not found)"
		}
		title := o.Label
		if title == "" {
			title = o.ID
		}
		items = append(items, styleItem{title: title, desc: desc, index: i})
	}
	f := m.frame()
	m.l.ResetFilter()
	m.l.SetSize(pickerSize(f, len(items)))
	m.l.SetItems(items)
	m.l.Select(m.ctrl.StyleIndex())
	m.picker = true
}

func (m *Model) pickStyle() {
	it, ok := m.l.SelectedItem().(styleItem)
	m.picker = false
	if !ok {
		return
	}
	if err := m.ctrl.SelectStyle(it.index); err != nil {
		m.log.Error("tui: selecting style %q: %s", it.title, err)
		m.status = "style error: " + err.Error()
		return
	}
	m.status = "style: " + it.title
}

func pickerSize(f frame, n int) (int, int) {
	return max(16, min(48, f.mapArea.w-4)), max(5, min(f.mapArea.h-2, 3*n+4))
}
