package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var storiesCmd = &cobra.Command{
	Use:   "stories",
	Short: "List the stories in the configured store",
	Run: func(cmd *cobra.Command, args []string) {
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

		stories, err := session.GetStories(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing stories: %v\n", err)
			os.Exit(1)
		}

		// Plain names when piped, a small header on a terminal.
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if len(stories) == 0 {
				fmt.Println("No stories found.")
				return
			}
			fmt.Printf("Stories (%d):\n", len(stories))
			for _, name := range stories {
				fmt.Printf("  %s\n", name)
			}
			return
		}

		jsonOut, _ := cmd.Flags().GetBool("json")
		if jsonOut {
			if err := writeJSON(os.Stdout, stories, false); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing story list: %v\n", err)
				os.Exit(1)
			}
			return
		}
		for _, name := range stories {
			fmt.Println(name)
		}
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <story>",
	Short: "Delete a story and its durable state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
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

		if err := session.DeleteStory(cmd.Context(), args[0]); err != nil {
			fmt.Printf("Error deleting story: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(storiesCmd)
	rootCmd.AddCommand(deleteCmd)
	storiesCmd.Flags().Bool("json", false, "Emit the story list as JSON")
}
