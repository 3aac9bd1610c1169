package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List documentation generation jobs",
	RunE:  runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(serverURL + "/api/jobs")
	if err != nil {
		return fmt.Errorf("connecting to server: %w\nIs the server running? Start it with: docugen serve", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(body))
	}

	var jobs []struct {
		ID          string `json:"id"`
		Source      string `json:"source"`
		Target      string `json:"target"`
		Status      string `json:"status"`
		FileCount   int    `json:"file_count"`
		ProjectType string `json:"project_type"`
		CreatedAt   string `json:"created_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTARGET\tSTATUS\tFILES\tTYPE")
	for _, j := range jobs {
		target := j.Target
		if len(target) > 40 {
			target = target[:37] + "..."
		}
		projectType := j.ProjectType
		if projectType == "" {
			projectType = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			j.ID, j.Source, target, statusIcon(j.Status), j.FileCount, projectType)
	}
	return w.Flush()
}

func statusIcon(status string) string {
	switch status {
	case "pending":
		return "⏳ pending"
	case "running":
		return "🔄 running"
	case "complete":
		return "✅ complete"
	case "error":
		return "❌ error"
	default:
		return status
	}
}
