package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"

	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/registry"
)

var outputFormat string

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")
}

// Printer writes command results as a table or as JSON.
type Printer struct {
	format string
	writer io.Writer
	now    func() time.Time
}

func NewPrinter() *Printer {
	return &Printer{format: outputFormat, writer: os.Stdout, now: time.Now}
}

func (p *Printer) json(v any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) PrintTypes(types []string) error {
	if p.format == "json" {
		return p.json(types)
	}
	for _, t := range types {
		fmt.Fprintln(p.writer, t)
	}
	return nil
}

func (p *Printer) PrintTypeInfo(info model.InputTypeInfo) error {
	if p.format == "json" {
		return p.json(info)
	}
	fmt.Fprintf(p.writer, "%s  %s\n", info.Type, info.Description)
	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tTYPE\tREQUIRED\tEXAMPLE\tDESCRIPTION")
	for _, f := range info.Fields {
		req := ""
		if f.Required {
			req = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.Name, f.Type, req, f.Example, f.Description)
	}
	return w.Flush()
}

func (p *Printer) PrintInputs(items []model.InputItem) error {
	if p.format == "json" {
		return p.json(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(p.writer, "No inputs found")
		return nil
	}
	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tINGEST PATH\tSTATE\tCREATED\tID")
	for _, it := range items {
		title := it.Title
		if title == "" {
			title = it.ID
		}
		created := "-"
		if !it.CreatedAt.IsZero() {
			created = humanize.RelTime(it.CreatedAt, p.now(), "ago", "from now")
		}
		fmt.Fprintf(w, "%s\t/ingest/%s\t%s\t%s\t%s\n", title, registry.IngestPath(it), it.State, created, it.ID)
	}
	return w.Flush()
}

func (p *Printer) PrintLogs(logs []model.RecentLog) error {
	if p.format == "json" {
		return p.json(logs)
	}
	if len(logs) == 0 {
		fmt.Fprintln(p.writer, "No logs yet")
		return nil
	}
	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tSERVICE\tLEVEL\tMESSAGE\tTAGS")
	for _, l := range logs {
		tags := make([]string, 0, len(l.Entry.Tags))
		for k, v := range l.Entry.Tags {
			tags = append(tags, k+"="+v)
		}
		sort.Strings(tags)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.Entry.Timestamp, l.Entry.Service, l.Entry.Level, l.Entry.Message, strings.Join(tags, ","))
	}
	return w.Flush()
}

func (p *Printer) PrintStatus(st model.UploadStatus) error {
	if p.format == "json" {
		return p.json(st)
	}
	if !st.BatcherEnabled {
		fmt.Fprintln(p.writer, "Batcher: off")
		return nil
	}
	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Batcher:\ton")
	fmt.Fprintf(w, "Pending:\t%s\n", humanize.Comma(int64(st.PendingCount)))
	if st.LastUploadAt != nil {
		fmt.Fprintf(w, "Last upload:\t%s (%s)\n", st.LastUploadAt.Format(time.RFC3339), humanize.RelTime(*st.LastUploadAt, p.now(), "ago", "from now"))
	} else {
		fmt.Fprintln(w, "Last upload:\tnever")
	}
	if st.LastUploadKey != "" {
		fmt.Fprintf(w, "Last key:\t%s\n", st.LastUploadKey)
	}
	return w.Flush()
}
