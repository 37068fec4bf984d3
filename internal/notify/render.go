package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/task"
)

// dateColumnHeader maps a status to the header of its date column.
var dateColumnHeader = map[string]string{
	model.StatusOpen:      "Created Date",
	model.StatusScheduled: "Trigger Date",
	model.StatusClosed:    "Close Date",
}

// dateColumnValue picks the status-appropriate date for one row.
func dateColumnValue(t model.Task) string {
	switch t.Status {
	case model.StatusScheduled:
		if t.TriggerDate != nil {
			return t.TriggerDate.Format(model.TriggerDateLayout)
		}
		return ""
	case model.StatusClosed:
		return t.UpdatedAt.Format(model.TriggerDateLayout)
	default:
		return t.CreatedAt.Format(model.TriggerDateLayout)
	}
}

// escapeDescription HTML-escapes free text while keeping the literal
// CRLF sequences users type into descriptions as line breaks.
func escapeDescription(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\r\n", "<br>")
}

// renderTaskTable renders one status group as the summary table the
// original notification mails carry. An empty group renders as "None".
// The tasks must already be in display order.
func renderTaskTable(tasks []model.Task, status, baseURL string) string {
	if len(tasks) == 0 {
		return "None"
	}

	var b strings.Builder
	b.WriteString(`<table cellpadding=1 cellspacing=0>
	<col width="100">
	<col width="190">
	<col width="90">
	<tr bgcolor="#002060" style="color:white;" align="center">
		<th>Title</th>
		<th>Description</th>
		<th>` + dateColumnHeader[status] + `</th>
	</tr>
`)
	for _, t := range tasks {
		fmt.Fprintf(&b, `	<tr>
		<td><a href="%s/task/%d">%s</a></td>
		<td>%s</td>
		<td align="center">%s</td>
	</tr>
`,
			baseURL, t.ID, html.EscapeString(t.Title),
			escapeDescription(t.Description),
			dateColumnValue(t),
		)
	}
	b.WriteString("</table>")
	return b.String()
}

// renderSummary renders the weekly summary body: the user's three task
// tables with the closed one already truncated by the overview.
func renderSummary(userName string, ov task.Overview, baseURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body>\n<h2>Task Summary for %s</h2>\n", html.EscapeString(userName))
	b.WriteString("<h3>Open Tasks</h3>\n")
	b.WriteString(renderTaskTable(ov.Open, model.StatusOpen, baseURL))
	b.WriteString("\n<h3>Scheduled Tasks</h3>\n")
	b.WriteString(renderTaskTable(ov.Scheduled, model.StatusScheduled, baseURL))
	b.WriteString("\n<h3>Recently Closed Tasks</h3>\n")
	b.WriteString(renderTaskTable(ov.Closed, model.StatusClosed, baseURL))
	b.WriteString("\n</body></html>")
	return b.String()
}

// renderTrigger renders the body of a trigger-date mail for one task.
func renderTrigger(t model.Task, baseURL string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	fmt.Fprintf(&b, "<p>Your task <a href=\"%s/task/%d\">%s</a> has reached its trigger date and is now open.</p>\n",
		baseURL, t.ID, html.EscapeString(t.Title))
	if t.Description != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", escapeDescription(t.Description))
	}
	b.WriteString("</body></html>")
	return b.String()
}
