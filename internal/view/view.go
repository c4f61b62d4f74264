// Package view derives the filtered, sorted and aggregated projections of a
// task set that the terminal client renders. Everything here is pure.
package view

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/adanyl0v/task-manager/internal/models"
)

type Status string

const (
	StatusAll       Status = models.StatusAll
	StatusPending   Status = models.StatusPending
	StatusCompleted Status = models.StatusCompleted
)

type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortDueDate   SortKey = "dueDate"
	SortPriority  SortKey = "priority"
)

var (
	Statuses = []Status{StatusAll, StatusPending, StatusCompleted}
	SortKeys = []SortKey{SortCreatedAt, SortDueDate, SortPriority}
)

// ParseStatus maps user input to a Status, defaulting to StatusAll.
func ParseStatus(s string) Status {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Statuses, status) {
		return status
	}
	return StatusAll
}

// ParseSort maps user input to a SortKey, defaulting to SortCreatedAt.
// Matching ignores case, so "duedate" selects SortDueDate.
func ParseSort(s string) SortKey {
	s = strings.TrimSpace(s)
	for _, key := range SortKeys {
		if strings.EqualFold(string(key), s) {
			return key
		}
	}
	return SortCreatedAt
}

type Query struct {
	Search string
	Status Status
	Sort   SortKey
}

// Apply searches, then filters by status, then sorts a copy of tasks.
// The input slice is never reordered.
func Apply(tasks []*models.Task, q Query) []*models.Task {
	out := Search(tasks, q.Search)
	out = Filter(out, q.Status)
	Sort(out, q.Sort)
	return out
}

// Search returns a new slice with the tasks whose title or description
// contains query, ignoring case. A blank query keeps everything.
func Search(tasks []*models.Task, query string) []*models.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		if query == "" ||
			strings.Contains(strings.ToLower(task.Title), query) ||
			strings.Contains(strings.ToLower(task.Description), query) {
			out = append(out, task)
		}
	}
	return out
}

func Filter(tasks []*models.Task, status Status) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		switch status {
		case StatusPending:
			if task.Completed {
				continue
			}
		case StatusCompleted:
			if !task.Completed {
				continue
			}
		}
		out = append(out, task)
	}
	return out
}

// Sort orders tasks in place. The sort is stable, so equal keys keep their
// relative order. Unknown keys sort by creation time.
func Sort(tasks []*models.Task, key SortKey) {
	switch key {
	case SortDueDate:
		slices.SortStableFunc(tasks, func(a, b *models.Task) int {
			return a.DueDate.Compare(b.DueDate.Time)
		})
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b *models.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	default:
		slices.SortStableFunc(tasks, func(a, b *models.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}

type Stats struct {
	Total          int
	Completed      int
	Pending        int
	Overdue        int
	CompletionRate int
}

// Summarize aggregates over the full task set, ignoring any view query.
func Summarize(tasks []*models.Task, now time.Time) Stats {
	var stats Stats
	for _, task := range tasks {
		stats.Total++
		if task.Completed {
			stats.Completed++
			continue
		}
		stats.Pending++
		if IsOverdue(task, now) {
			stats.Overdue++
		}
	}
	stats.CompletionRate = CompletionRate(stats.Completed, stats.Total)
	return stats
}

// CompletionRate returns completed/total as a rounded percentage, or 0
// when there are no tasks.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// IsOverdue reports whether a pending task's due date is strictly before
// now. Tasks without a due date are never overdue.
func IsOverdue(task *models.Task, now time.Time) bool {
	if task.Completed || task.DueDate.IsZero() {
		return false
	}
	return task.DueDate.Before(now)
}
