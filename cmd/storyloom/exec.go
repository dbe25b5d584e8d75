package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/spf13/cobra"
)

// batchFile is the on-disk shape accepted by the exec command. It mirrors the
// HTTP execute request.
type batchFile struct {
	Options  *domain.StoryOptions `json:"options,omitempty"`
	Commands []domain.Command     `json:"commands"`
}

var execCmd = &cobra.Command{
	Use:   "exec <story> <batch.json>",
	Short: "Execute a command batch against a story",
	Long: `Reads a JSON file holding a command batch and executes it against the
named story. Commands apply in order; execution stops at the first failure
without rolling back earlier commands.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		storyName, batchPath := args[0], args[1]

		data, err := os.ReadFile(batchPath)
		if err != nil {
			fmt.Printf("Error reading batch file: %v\n", err)
			os.Exit(1)
		}

		var batch batchFile
		if err := json.Unmarshal(data, &batch); err != nil {
			fmt.Printf("Error parsing batch file: %v\n", err)
			os.Exit(1)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		session, err := buildSession(cfg, newLogger(cfg))
		if err != nil {
			fmt.Printf("Error initializing session: %v\n", err)
			os.Exit(1)
		}

		ctrl, err := session.ControlStory(storyName)
		if err != nil {
			fmt.Printf("Error controlling story: %v\n", err)
			os.Exit(1)
		}
		if batch.Options != nil {
			ctrl.SetCreateOptions(*batch.Options)
		}
		ctrl.Enqueue(batch.Commands...)

		result := ctrl.Execute(cmd.Context())

		if err := writeJSON(os.Stdout, result, true); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
			os.Exit(1)
		}

		if !result.OK() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
