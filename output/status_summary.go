package output

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"dealerhub/record"
)

// StatusSummary counts the stored records of one kind sharing a status.
type StatusSummary struct {
	Kind          record.Kind
	Status        string
	Count         int
	Share         float64
	FirstImported time.Time
	LastImported  time.Time
}

// BuildStatusSummaries groups docs by their status field. Summaries are
// ordered by kind, then by descending count, then by status.
func BuildStatusSummaries(docs []record.Document) []StatusSummary {
	if len(docs) == 0 {
		return []StatusSummary{}
	}

	type groupKey struct {
		kind   record.Kind
		status string
	}
	groups := make(map[groupKey]*StatusSummary)
	totals := make(map[record.Kind]int)

	for _, doc := range docs {
		key := groupKey{kind: doc.Kind, status: statusOf(doc)}
		summary, ok := groups[key]
		if !ok {
			summary = &StatusSummary{
				Kind:          doc.Kind,
				Status:        key.status,
				FirstImported: doc.CreatedAt,
				LastImported:  doc.CreatedAt,
			}
			groups[key] = summary
		}
		summary.Count++
		summary.FirstImported = minTime(summary.FirstImported, doc.CreatedAt)
		summary.LastImported = maxTime(summary.LastImported, doc.CreatedAt)
		totals[doc.Kind]++
	}

	summaries := make([]StatusSummary, 0, len(groups))
	for _, summary := range groups {
		summary.Share = roundPercent(float64(summary.Count) / float64(totals[summary.Kind]) * 100)
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Kind != summaries[j].Kind {
			return kindOrder(summaries[i].Kind) < kindOrder(summaries[j].Kind)
		}
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].Status < summaries[j].Status
	})
	return summaries
}

func StatusSummaryTable(summaries []StatusSummary) Table {
	table := Table{
		Headers: []string{"Kind", "Status", "Count", "SharePercent", "FirstImported", "LastImported"},
		Rows:    make([][]string, 0, len(summaries)),
	}
	for _, summary := range summaries {
		table.Rows = append(table.Rows, []string{
			string(summary.Kind),
			summary.Status,
			strconv.Itoa(summary.Count),
			fmt.Sprintf("%.2f", summary.Share),
			summary.FirstImported.UTC().Format(time.RFC3339),
			summary.LastImported.UTC().Format(time.RFC3339),
		})
	}
	return table
}

func statusOf(doc record.Document) string {
	switch payload := doc.Payload.(type) {
	case record.Dealer:
		return payload.ProspectionStatus
	case record.Unit:
		return payload.Status
	case record.Site:
		return payload.Status
	default:
		return ""
	}
}

func kindOrder(kind record.Kind) int {
	for i, candidate := range record.AllKinds() {
		if candidate == kind {
			return i
		}
	}
	return len(record.AllKinds())
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func roundPercent(value float64) float64 {
	return math.Round(value*100) / 100
}
