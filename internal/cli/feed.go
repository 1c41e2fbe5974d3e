package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sammoorhouse/mentos/internal/model"
)

// eventIcons maps timeline event types to feed icons.
var eventIcons = map[model.EventType]string{
	model.EventStatus:          InfoIcon,
	model.EventWeeklyProgress:  ChartIcon,
	model.EventInsight:         InsightIcon,
	model.EventGoalUpdate:      TargetIcon,
	model.EventBreakthrough:    BreakthroughIcon,
	model.EventStreakUpdate:    StreakIcon,
	model.EventStreakBroken:    BrokenIcon,
	model.EventMonthlyFraming:  CalendarIcon,
	model.EventQuarterlyReview: CalendarIcon,
	model.EventYearReview:      ChartIcon,
}

// RenderTimelinePage writes a styled rendering of one feed page.
func RenderTimelinePage(w io.Writer, page *model.TimelinePage) {
	if len(page.Events) == 0 {
		writeLine(w, SubtleStyle.Render("No timeline events yet. Import some transactions first."))
		return
	}

	for i := range page.Events {
		writeLine(w, RenderEvent(&page.Events[i]))
	}

	if page.NextCursor != "" {
		writeLine(w, SubtleStyle.Render(fmt.Sprintf("More events available. Next cursor: %s", page.NextCursor)))
	}
}

// RenderEvent renders a single timeline event as a boxed card.
func RenderEvent(event *model.TimelineEvent) string {
	icon, ok := eventIcons[event.Type]
	if !ok {
		icon = InfoIcon
	}

	var b strings.Builder
	b.WriteString(event.Body)
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%s · priority %d", event.OccurredAt.Format("Mon 2 Jan 2006"), event.Priority)))

	for _, action := range event.Actions {
		marker := "•"
		if action.Kind == model.ActionPrimary {
			marker = "▸"
		}
		b.WriteString("\n")
		b.WriteString(ProgressStyle.Render(fmt.Sprintf("%s %s (%s)", marker, action.Label, action.ID)))
	}

	return RenderBox(icon+" "+event.Title, b.String())
}

// FormatPence renders a pence amount as pounds, e.g. 2550 -> £25.50.
func FormatPence(pence int64) string {
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	return fmt.Sprintf("%s£%d.%02d", sign, pence/100, pence%100)
}

func writeLine(w io.Writer, line string) {
	if _, err := fmt.Fprintln(w, line); err != nil {
		slog.Warn("Failed to write feed output", "error", err)
	}
}
