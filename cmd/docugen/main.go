// Docugen - AI-assisted code documentation.
//
// Generate Markdown documentation from code snippets, uploaded files
// or whole GitHub repositories.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "docugen",
	Short: "Docugen - AI-assisted code documentation",
	Long: `Docugen generates Markdown documentation from code.

  docugen serve                                      Start the API server
  docugen generate --repo https://github.com/o/r     Document a repository
  docugen generate --file main.py                    Document a local file
  docugen jobs                                       List generation jobs`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("DOCUGEN_SERVER", "http://localhost:8000"), "Docugen server URL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
