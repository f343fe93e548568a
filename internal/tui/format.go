package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rivo/tview"

	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/registry"
)

var levelColors = map[string]string{
	"debug": "gray",
	"info":  "green",
	"warn":  "yellow",
	"error": "red",
}

// formatLogLine renders one entry as "HH:MM:SS service level message {k=v}".
// Backend text is escaped so it cannot inject color tags.
func formatLogLine(l model.RecentLog) string {
	var b strings.Builder
	b.WriteString("[gray]")
	b.WriteString(l.ReceivedAt.Local().Format("15:04:05"))
	b.WriteString("[-] ")
	b.WriteString(tview.Escape(l.Entry.Service))
	b.WriteByte(' ')
	level := strings.ToLower(l.Entry.Level)
	if color, ok := levelColors[level]; ok {
		fmt.Fprintf(&b, "[%s]%s[-]", color, tview.Escape(l.Entry.Level))
	} else {
		b.WriteString(tview.Escape(l.Entry.Level))
	}
	b.WriteByte(' ')
	b.WriteString(tview.Escape(l.Entry.Message))
	if tags := formatTags(l.Entry.Tags); tags != "" {
		b.WriteString(" [darkcyan]")
		b.WriteString(tview.Escape(tags))
		b.WriteString("[-]")
	}
	return b.String()
}

func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+tags[k])
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// formatLogs renders the buffer newest first.
func formatLogs(newestFirst []model.RecentLog) string {
	if len(newestFirst) == 0 {
		return "[gray]No logs yet. Select an input and press Enter to send a test log.[-]"
	}
	lines := make([]string, len(newestFirst))
	for i, l := range newestFirst {
		lines[i] = formatLogLine(l)
	}
	return strings.Join(lines, "\n")
}

// formatStatus renders the upload panel. An absent status reads as loading.
func formatStatus(st model.UploadStatus, present bool, now time.Time) string {
	if !present {
		return "[gray]Loading…[-]"
	}
	if !st.BatcherEnabled {
		return "Batcher: [red]Off[-]"
	}
	var b strings.Builder
	b.WriteString("Batcher: [green]On[-]\n")
	fmt.Fprintf(&b, "Pending: %s logs\n", humanize.Comma(int64(st.PendingCount)))
	fmt.Fprintf(&b, "Last upload: %s logs", humanize.Comma(int64(st.LastUploadCount)))
	if st.LastUploadAt != nil {
		fmt.Fprintf(&b, "\n%s (%s)",
			st.LastUploadAt.Local().Format("2006-01-02 15:04:05"),
			humanize.RelTime(*st.LastUploadAt, now, "ago", "from now"))
	}
	if st.LastUploadKey != "" {
		b.WriteString("\n[gray]")
		b.WriteString(tview.Escape(st.LastUploadKey))
		b.WriteString("[-]")
	}
	return b.String()
}

// formatInputRow returns the table cells for one input: title, ingest route, state.
func formatInputRow(item model.InputItem) []string {
	title := item.Title
	if title == "" {
		title = item.ID
	}
	return []string{title, "/ingest/" + registry.IngestPath(item), item.State}
}

// fieldLabel is the form label of a schema field; required fields end in " *".
func fieldLabel(f model.ConfigField) string {
	if f.Required {
		return f.Name + " *"
	}
	return f.Name
}

// fieldAccept restricts number fields to digits. Other types accept anything.
func fieldAccept(f model.ConfigField) func(string, rune) bool {
	if f.Type != "number" {
		return nil
	}
	return func(text string, _ rune) bool {
		for _, r := range text {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
}

func submitLabel(submitting bool) string {
	if submitting {
		return "Creating…"
	}
	return "Create input"
}
