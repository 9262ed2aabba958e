package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tunebar/internal/dispatch"
)

var _ list.Item = resultItem{}

// resultItem wraps [dispatch.Result] to implement [list.Item].
type resultItem struct {
	result dispatch.Result
}

func (i resultItem) FilterValue() string { return i.result.Title }
func (i resultItem) Title() string       { return i.result.Title }
func (i resultItem) Description() string {
	if i.result.Subtitle == "" {
		return " "
	}
	return i.result.Subtitle
}

// newResultList builds the list model for dispatch results. Filtering is
// off since the query input drives what the list contains.
func newResultList() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// resultItems converts dispatch results for the list model.
func resultItems(results []dispatch.Result) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
