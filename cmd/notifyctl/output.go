package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dalemusser/notifyhub/internal/app/notify"
	"gopkg.in/yaml.v3"
)

type decisionRow struct {
	UserID    string `json:"user_id" yaml:"user_id"`
	Handle    string `json:"handle" yaml:"handle"`
	Reasons   string `json:"reasons" yaml:"reasons"`
	Level     string `json:"level,omitempty" yaml:"level,omitempty"`
	Recipient bool   `json:"recipient" yaml:"recipient"`
	DroppedAt string `json:"dropped_at,omitempty" yaml:"dropped_at,omitempty"`
}

type levelRow struct {
	UserID    string `json:"user_id" yaml:"user_id"`
	ProjectID string `json:"project_id" yaml:"project_id"`
	Level     string `json:"level" yaml:"level"`
}

func printDecisions(w io.Writer, format string, decisions []notify.Decision) error {
	rows := make([]decisionRow, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, decisionRow{
			UserID:    d.UserID.Hex(),
			Handle:    d.Handle,
			Reasons:   d.Reasons.String(),
			Level:     string(d.Level),
			Recipient: d.DroppedAt == "",
			DroppedAt: d.DroppedAt,
		})
	}

	if format != "table" {
		return encode(w, format, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tREASONS\tLEVEL\tRESULT")
	recipients := 0
	for _, r := range rows {
		result := "notify"
		if !r.Recipient {
			result = "dropped at " + r.DroppedAt
		} else {
			recipients++
		}
		fmt.Fprintf(tw, "@%s\t%s\t%s\t%s\n", r.Handle, r.Reasons, dash(r.Level), result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d candidates notified\n", recipients, len(rows))
	return err
}

func printLevel(w io.Writer, format, userID, projectID, level string) error {
	if format == "table" {
		_, err := fmt.Fprintln(w, level)
		return err
	}
	return encode(w, format, levelRow{UserID: userID, ProjectID: projectID, Level: level})
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
