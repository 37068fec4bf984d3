package server

import (
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/task"
)

// The pages are deliberately plain; presentation is not where this
// application earns its keep.
var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html><html><head><title>TaskCur</title></head><body>{{end}}
{{define "foot"}}</body></html>{{end}}
{{define "flash"}}{{if .Message}}<p><em>{{.Message}}</em></p>{{end}}{{end}}

{{define "login"}}{{template "head"}}
<h2>TaskCur Login</h2>
{{template "flash" .}}
<form method="POST" action="/user-login">
	<label>User Name <input type="text" name="user_name" value="{{.UserName}}"></label><br>
	<label>Password <input type="password" name="password"></label><br>
	<input type="submit" value="Log In">
</form>
<p><a href="/create-user">Create a new account</a></p>
{{template "foot"}}{{end}}

{{define "create_user"}}{{template "head"}}
<h2>Create Account</h2>
{{template "flash" .}}
<form method="POST" action="/create-user">
	<label>User Name <input type="text" name="user_name" value="{{.UserName}}"></label><br>
	<label>Email Address(es) <input type="text" name="email_address" value="{{.EmailAddress}}"></label><br>
	<label>Weekly Summary
		<select name="summary_notification_preference">
			<option value="none" {{if eq .SummaryPref "none"}}selected{{end}}>None</option>
			<option value="weekly:friday" {{if eq .SummaryPref "weekly:friday"}}selected{{end}}>Weekly (Friday)</option>
		</select>
	</label><br>
	<label>Trigger Notification
		<select name="trigger_notification_preference">
			<option value="none" {{if eq .TriggerPref "none"}}selected{{end}}>None</option>
			<option value="email" {{if eq .TriggerPref "email"}}selected{{end}}>Email</option>
		</select>
	</label><br>
	<label>Closed Tasks Shown <input type="number" name="closed_task_display_count_preference" min="1" value="{{.ClosedDisplayCount}}"></label><br>
	<label>Password <input type="password" name="password"></label><br>
	<label>Confirm Password <input type="password" name="password_confirm"></label><br>
	<input type="submit" value="Create Account">
</form>
{{template "foot"}}{{end}}

{{define "set_password"}}{{template "head"}}
<h2>Set Password for {{.UserName}}</h2>
{{template "flash" .}}
<form method="POST" action="/set-password">
	<input type="hidden" name="user_name" value="{{.UserName}}">
	<label>New Password <input type="password" name="password"></label><br>
	<label>Confirm Password <input type="password" name="password_confirm"></label><br>
	<input type="submit" value="Set Password">
</form>
{{template "foot"}}{{end}}

{{define "change_password"}}{{template "head"}}
<h2>Change Password for {{.UserName}}</h2>
{{template "flash" .}}
<form method="POST" action="/user/{{.UserName}}/password">
	<label>New Password <input type="password" name="password"></label><br>
	<label>Confirm Password <input type="password" name="password_confirm"></label><br>
	<input type="submit" value="Change Password">
</form>
<p><a href="/user/{{.UserName}}">Back</a></p>
{{template "foot"}}{{end}}

{{define "task_table"}}{{if .}}<table border="1" cellpadding="2" cellspacing="0">
	<tr><th>Title</th><th>Description</th><th>Date</th></tr>
	{{range .}}<tr>
		<td><a href="/task/{{.ID}}">{{.Title}}</a></td>
		<td>{{.Description}}</td>
		<td align="center">{{.Date}}</td>
	</tr>{{end}}
</table>{{else}}None{{end}}{{end}}

{{define "user_home"}}{{template "head"}}
<h2>Tasks for {{.UserName}}</h2>
{{template "flash" .}}
<p>
	<a href="/user/{{.UserName}}/create-task">New Task</a> |
	<a href="/user/{{.UserName}}/update">Preferences</a> |
	<a href="/user/{{.UserName}}/password">Password</a>
</p>
<h3>Open</h3>
{{template "task_table" .Open}}
<h3>Scheduled</h3>
{{template "task_table" .Scheduled}}
<h3>Recently Closed</h3>
{{template "task_table" .Closed}}
<form method="POST" action="/logout"><input type="submit" value="Log Out"></form>
<form method="POST" action="/user/{{.UserName}}/delete" onsubmit="return confirm('Delete account and all tasks?')">
	<input type="submit" value="Delete Account">
</form>
{{template "foot"}}{{end}}

{{define "update_user"}}{{template "head"}}
<h2>Preferences for {{.UserName}}</h2>
{{template "flash" .}}
<form method="POST" action="/user/{{.UserName}}/update">
	<label>Email Address(es) <input type="text" name="email_address" value="{{.EmailAddress}}"></label><br>
	<label>Weekly Summary
		<select name="summary_notification_preference">
			<option value="none" {{if eq .SummaryPref "none"}}selected{{end}}>None</option>
			<option value="weekly:friday" {{if eq .SummaryPref "weekly:friday"}}selected{{end}}>Weekly (Friday)</option>
		</select>
	</label><br>
	<label>Trigger Notification
		<select name="trigger_notification_preference">
			<option value="none" {{if eq .TriggerPref "none"}}selected{{end}}>None</option>
			<option value="email" {{if eq .TriggerPref "email"}}selected{{end}}>Email</option>
		</select>
	</label><br>
	<label>Closed Tasks Shown <input type="number" name="closed_task_display_count_preference" min="1" value="{{.ClosedDisplayCount}}"></label><br>
	<input type="submit" value="Update">
</form>
<p><a href="/user/{{.UserName}}">Back</a></p>
{{template "foot"}}{{end}}

{{define "create_task"}}{{template "head"}}
<h2>New Task for {{.UserName}}</h2>
{{template "flash" .}}
<form method="POST" action="/user/{{.UserName}}/create-task">
	<label>Title <input type="text" name="task_title" value="{{.Title}}"></label><br>
	<label>Description<br><textarea name="task_description" rows="5" cols="40">{{.RawDescription}}</textarea></label><br>
	<label>Trigger Date <input type="date" name="trigger_date" min="{{.MinDate}}" value="{{.TriggerDate}}"></label><br>
	<input type="submit" value="Create Task">
</form>
<p><a href="/user/{{.UserName}}">Back</a></p>
{{template "foot"}}{{end}}

{{define "task_home"}}{{template "head"}}
<h2>{{.Title}}</h2>
{{template "flash" .}}
<p>Status: {{.StatusLine}}</p>
<p>{{.Description}}</p>
<form method="GET" action="/task/{{.ID}}/update"><input type="submit" value="Update Task"></form>
<form method="GET" action="/task/{{.ID}}/close"><input type="submit" value="Close Task"></form>
<form method="POST" action="/task/{{.ID}}/delete" onsubmit="return confirm('Delete this task?')">
	<input type="submit" value="Delete Task">
</form>
<p><a href="/user/{{.Owner}}">Back</a></p>
{{template "foot"}}{{end}}

{{define "update_task"}}{{template "head"}}
<h2>Update Task</h2>
{{template "flash" .}}
<p>Status: {{.StatusLine}}</p>
<form method="POST" action="/task/{{.ID}}/update">
	<label>Title <input type="text" name="task_title" value="{{.Title}}"></label><br>
	<label>Description<br><textarea name="task_description" rows="5" cols="40">{{.RawDescription}}</textarea></label><br>
	<label>Trigger Date <input type="date" name="trigger_date" min="{{.MinDate}}" value="{{.TriggerDate}}"></label><br>
	<input type="submit" value="Update Task">
</form>
<p><a href="/task/{{.ID}}">Back</a></p>
{{template "foot"}}{{end}}

{{define "close_task"}}{{template "head"}}
<h2>Close {{.Title}}</h2>
<p>Status: {{.StatusLine}}</p>
<p>{{.Description}}</p>
<form method="POST" action="/task/{{.ID}}/close"><input type="submit" value="Close Task"></form>
<form method="POST" action="/task/{{.ID}}/close-and-recreate"><input type="submit" value="Close Task and Re-Create"></form>
<p><a href="/task/{{.ID}}">Back</a></p>
{{template "foot"}}{{end}}

{{define "recreate_task"}}{{template "head"}}
<h2>Re-Create Task for {{.UserName}}</h2>
{{template "flash" .}}
<form method="POST" action="/user/{{.UserName}}/create-task">
	<label>Title <input type="text" name="task_title" value="{{.Title}}"></label><br>
	<label>Description<br><textarea name="task_description" rows="5" cols="40">{{.RawDescription}}</textarea></label><br>
	<label>Trigger Date <input type="date" name="trigger_date" min="{{.MinDate}}" value=""></label><br>
	<input type="submit" value="Create Task">
</form>
<p><a href="/user/{{.UserName}}">Back</a></p>
{{template "foot"}}{{end}}
`))

// taskRow is one row of a status table on the user home page.
type taskRow struct {
	ID          int64
	Title       string
	Description template.HTML
	Date        string
}

// descriptionHTML escapes free text while keeping literal CRLF
// sequences as line breaks.
func descriptionHTML(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(html.EscapeString(s), "\r\n", "<br>"))
}

// rowDate picks the status-appropriate date column value.
func rowDate(t model.Task) string {
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

func taskRows(tasks []model.Task) []taskRow {
	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRow{
			ID:          t.ID,
			Title:       t.Title,
			Description: descriptionHTML(t.Description),
			Date:        rowDate(t),
		})
	}
	return rows
}

// statusLine renders a task's status the way the pages show it, with
// the trigger date folded into a scheduled status.
func statusLine(t model.Task) string {
	if t.Status == model.StatusScheduled && t.TriggerDate != nil {
		return "Scheduled - " + t.TriggerDate.Format(model.TriggerDateLayout)
	}
	return t.Status
}

// tomorrow is the earliest selectable trigger date on the forms.
func tomorrow(now time.Time) string {
	return now.AddDate(0, 0, 1).Format(model.TriggerDateLayout)
}

type userHomeView struct {
	UserName  string
	Message   string
	Open      []taskRow
	Scheduled []taskRow
	Closed    []taskRow
}

type userFormView struct {
	UserName           string
	EmailAddress       string
	SummaryPref        string
	TriggerPref        string
	ClosedDisplayCount int
	Message            string
}

type taskFormView struct {
	ID             int64
	UserName       string
	Owner          string
	Title          string
	RawDescription string
	Description    template.HTML
	TriggerDate    string
	StatusLine     string
	MinDate        string
	Message        string
}

func newTaskFormView(t model.Task, now time.Time, message string) taskFormView {
	trigger := ""
	if t.TriggerDate != nil {
		trigger = t.TriggerDate.Format(model.TriggerDateLayout)
	}
	return taskFormView{
		ID:             t.ID,
		UserName:       t.Owner,
		Owner:          t.Owner,
		Title:          t.Title,
		RawDescription: t.Description,
		Description:    descriptionHTML(t.Description),
		TriggerDate:    trigger,
		StatusLine:     statusLine(t),
		MinDate:        tomorrow(now),
		Message:        message,
	}
}

func newUserHomeView(name, message string, ov task.Overview) userHomeView {
	return userHomeView{
		UserName:  name,
		Message:   message,
		Open:      taskRows(ov.Open),
		Scheduled: taskRows(ov.Scheduled),
		Closed:    taskRows(ov.Closed),
	}
}
