package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/notifyhub/internal/app/notifier"
	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var eventFile string

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show who an event would notify and why",
		Long: `Resolve an event described in a YAML file and list every candidate with
its reasons, effective level and the stage that dropped it.

Example event file:

  kind: new_note
  actor_id: 65f0c2a1e4b0a1b2c3d4e5f6
  project_id: 65f0c2a1e4b0a1b2c3d4e5f7
  item_id: 65f0c2a1e4b0a1b2c3d4e5f8
  note_id: 65f0c2a1e4b0a1b2c3d4e5f9

Examples:
  notifyctl resolve --event note.yaml
  notifyctl resolve --event note.yaml -o json`,
		RunE: runResolve,
	}

	cmd.Flags().StringVarP(&eventFile, "event", "e", "", "YAML event file (required, - for stdin)")
	cmd.MarkFlagRequired("event")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	req, err := readEvent(eventFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Long())
	defer cancel()

	svc, closeFn, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	decisions, err := svc.Preview(ctx, req)
	if err != nil {
		return fmt.Errorf("resolve %s event: %w", req.Kind, err)
	}
	return printDecisions(cmd.OutOrStdout(), outputFmt, decisions)
}

func readEvent(path string, stdin io.Reader) (notifier.Request, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return notifier.Request{}, fmt.Errorf("failed to read event: %w", err)
	}
	return parseEvent(data)
}

func parseEvent(data []byte) (notifier.Request, error) {
	var req notifier.Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return notifier.Request{}, fmt.Errorf("failed to parse event: %w", err)
	}
	if !notify.KnownEventKind(notify.EventKind(req.Kind)) {
		return notifier.Request{}, fmt.Errorf("unknown event kind %q", req.Kind)
	}
	return req, nil
}
