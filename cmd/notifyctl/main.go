// notifyctl inspects notification recipient resolution against a NotifyHub
// database without sending anything.
//
// Usage:
//
//	notifyctl resolve --event event.yaml
//	notifyctl level --user 65f0c2... --project 65f0c3...
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	outputFmt string
	mongoURI  string
	database  string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notifyctl",
		Short: "Preview notification recipients and effective levels",
		Long: `notifyctl runs the recipient resolution engine read-only against the
NotifyHub database. It never records markers or sends mail.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&mongoURI, "mongo-uri", envOr("NOTIFYHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	root.PersistentFlags().StringVar(&database, "database", envOr("NOTIFYHUB_MONGO_DATABASE", "notifyhub"), "MongoDB database name")

	root.AddCommand(resolveCmd())
	root.AddCommand(levelCmd())
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
