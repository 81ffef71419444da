package main

import (
	"context"
	"fmt"

	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	levelUser    string
	levelProject string
)

func levelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Show a user's effective notification level for a project",
		Long: `Walk the project, group and account settings for a user and print the
level that applies.

Examples:
  notifyctl level --user 65f0c2a1e4b0a1b2c3d4e5f6 --project 65f0c2a1e4b0a1b2c3d4e5f7`,
		RunE: runLevel,
	}

	cmd.Flags().StringVar(&levelUser, "user", "", "User ID (required)")
	cmd.Flags().StringVar(&levelProject, "project", "", "Project ID (required)")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("project")
	return cmd
}

func runLevel(cmd *cobra.Command, args []string) error {
	userID, err := primitive.ObjectIDFromHex(levelUser)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	projectID, err := primitive.ObjectIDFromHex(levelProject)
	if err != nil {
		return fmt.Errorf("invalid --project: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Medium())
	defer cancel()

	svc, closeFn, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	level, err := svc.EffectiveLevel(ctx, userID, projectID)
	if err != nil {
		return err
	}
	return printLevel(cmd.OutOrStdout(), outputFmt, levelUser, levelProject, string(level))
}
