package task

import (
	"sort"

	"github.com/taskcur/taskcur/internal/model"
)

// OrderForDisplay sorts a single-status task list the way it is shown
// to the user: open ascending by creation date, scheduled ascending by
// trigger date, closed descending by close date. For closed tasks a
// positive limit keeps only the most recently closed. The input slice
// is not modified.
func OrderForDisplay(tasks []model.Task, status string, limit int) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)

	switch status {
	case model.StatusScheduled:
		sort.SliceStable(out, func(i, j int) bool {
			ti, tj := out[i].TriggerDate, out[j].TriggerDate
			switch {
			case ti == nil:
				return false
			case tj == nil:
				return true
			default:
				return ti.Before(*tj)
			}
		})
	case model.StatusClosed:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out
}
