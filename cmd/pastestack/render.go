package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"go.klb.dev/pastestack/internal/history"
	"go.klb.dev/pastestack/internal/message"
)

const timeLayout = "2006-01-02 15:04:05"

// eventInfo summarises a stored event for listings and IPC replies.
func eventInfo(ev history.StoredEvent) message.EventInfo {
	plain := ev.Event()
	var types []string
	for _, it := range plain.Items {
		types = append(types, it.Types()...)
	}
	return message.EventInfo{
		ID:        ev.ID,
		Timestamp: ev.Time().UTC(),
		Hash:      ev.Hash,
		Items:     len(ev.Items),
		Types:     types,
		Summary:   history.Describe(plain),
	}
}

func eventInfos(events []history.StoredEvent) []message.EventInfo {
	infos := make([]message.EventInfo, len(events))
	for i, ev := range events {
		infos[i] = eventInfo(ev)
	}
	return infos
}

// renderYAML writes v as a YAML document.
func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// renderList writes events newest first, as a table or as a JSON array.
func renderList(w io.Writer, events []history.StoredEvent, asJSON bool) error {
	infos := eventInfos(events)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No clipboard history.")
		return err
	}

	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID\tTIME (UTC)\tITEMS\tSUMMARY\n")
	for _, in := range infos {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", in.ID, in.Timestamp.Format(timeLayout), in.Items, in.Summary)
	}
	return tw.Flush()
}

// renderEvent writes every item and payload of ev. Text payloads are shown
// quoted and truncated; everything else by size.
func renderEvent(w io.Writer, ev history.StoredEvent) error {
	_, _ = fmt.Fprintf(w, "event: %d\n", ev.ID)
	_, _ = fmt.Fprintf(w, "time:  %s UTC\n", ev.Time().UTC().Format(timeLayout))
	_, _ = fmt.Fprintf(w, "hash:  %s\n", ev.Hash)
	_, _ = fmt.Fprintf(w, "items: %d\n", len(ev.Items))

	for i, it := range ev.Items {
		_, _ = fmt.Fprintf(w, "item %d:\n", i+1)
		if len(it.Payloads) == 0 {
			_, _ = fmt.Fprintln(w, "  (no payloads)")
			continue
		}
		for _, p := range it.Payloads {
			if history.IsText(p.Type) {
				_, _ = fmt.Fprintf(w, "  %s: %s\n", p.Type, strconv.Quote(history.Truncate(string(p.Data))))
			} else {
				_, _ = fmt.Fprintf(w, "  %s: %d bytes\n", p.Type, p.Size())
			}
		}
	}
	return nil
}

// renderStatus writes daemon status as aligned key/value lines.
func renderStatus(w io.Writer, st *message.StatusInfo, transport string) error {
	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Transport:\t%s\n", transport)
	if st.PID != 0 {
		_, _ = fmt.Fprintf(tw, "Daemon:\tpid %d, up since %s\n", st.PID, st.StartedAt.Format(time.RFC3339))
		if st.Instance != "" {
			_, _ = fmt.Fprintf(tw, "Instance:\t%s\n", st.Instance)
		}
	} else {
		_, _ = fmt.Fprintf(tw, "Daemon:\tnot running\n")
	}
	if st.Backend != "" {
		_, _ = fmt.Fprintf(tw, "Backend:\t%s\n", st.Backend)
	}
	if st.Interval != "" {
		_, _ = fmt.Fprintf(tw, "Interval:\t%s\n", st.Interval)
	}
	_, _ = fmt.Fprintf(tw, "Database:\t%s (%s)\n", st.DB, st.Driver)
	_, _ = fmt.Fprintf(tw, "Retained:\t%d / %d\n", st.Retained, st.MaxRetained)
	if st.PID != 0 {
		_, _ = fmt.Fprintf(tw, "Captured:\t%d stored, %d duplicates\n", st.Stored, st.Duplicates)
		if st.LastID != 0 {
			_, _ = fmt.Fprintf(tw, "Last event:\t%d (%s)\n", st.LastID, fmtAge(st.LastAt))
		}
	}
	return tw.Flush()
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
