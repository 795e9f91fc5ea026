// Command migrate-photos copies inline-encoded gallery photos to the image host.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate-photos",
		Short:         "Move inline-encoded wedding photos to the image host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("database-url", "", "datastore connection string (defaults to DATABASE_URL)")
	root.AddCommand(newListCmd(), newRunCmd())
	return root
}
