package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var (
	genRepo     string
	genFile     string
	genMaxFiles int
	genOut      string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documentation",
	Long: `Generate Markdown documentation via a running Docugen server.

  docugen generate --repo https://github.com/owner/repo
  docugen generate --file path/to/code.py --out docs.md`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genRepo, "repo", "", "GitHub repository URL to document")
	generateCmd.Flags().StringVar(&genFile, "file", "", "local code file to document")
	generateCmd.Flags().IntVar(&genMaxFiles, "max-files", 0, "limit repository files processed")
	generateCmd.Flags().StringVar(&genOut, "out", "", "write Markdown to this file instead of stdout")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var markdown string
	var err error

	switch {
	case genRepo != "" && genFile != "":
		return fmt.Errorf("use either --repo or --file, not both")
	case genRepo != "":
		markdown, err = generateFromRepo(genRepo, genMaxFiles)
	case genFile != "":
		markdown, err = generateFromFile(genFile)
	default:
		return fmt.Errorf("either --repo or --file is required")
	}
	if err != nil {
		return err
	}

	if genOut != "" {
		if err := os.WriteFile(genOut, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Printf("Documentation written to %s\n", genOut)
		return nil
	}

	fmt.Println(markdown)
	return nil
}

func generateFromRepo(url string, maxFiles int) (string, error) {
	return postForDocs("/api/docs/from-github", map[string]any{
		"github_url": url,
		"max_files":  maxFiles,
	})
}

func generateFromFile(path string) (string, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return postForDocs("/api/docs/generate", map[string]any{
		"code": string(code),
	})
}

func postForDocs(path string, body map[string]any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	resp, err := http.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("connecting to server: %w\nIs the server running? Start it with: docugen serve", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Markdown string `json:"markdown"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	return result.Markdown, nil
}
