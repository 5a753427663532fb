// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed docs/*.md
var docsFS embed.FS

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Show documentation for a topic",
	Long: `Show documentation for a topic, rendered for the terminal.

Run without arguments to list available topics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listDocTopics()
		}
		return showDocTopic(args[0])
	},
}

func listDocTopics() error {
	topics, err := docTopics()
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("Available topics"))
	for _, topic := range topics {
		fmt.Println("  " + CmdStyle.Render(topic))
	}
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Use 'labpod docs <topic>' to read one."))
	return nil
}

func showDocTopic(topic string) error {
	content, err := docsFS.ReadFile("docs/" + topic + ".md")
	if err != nil {
		topics, terr := docTopics()
		if terr == nil {
			return fmt.Errorf("unknown topic %q, available: %s", topic, strings.Join(topics, ", "))
		}
		return fmt.Errorf("unknown topic %q", topic)
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return err
	}
	rendered, err := renderer.Render(string(content))
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}

func docTopics() ([]string, error) {
	entries, err := docsFS.ReadDir("docs")
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(entries))
	for _, entry := range entries {
		topics = append(topics, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(topics)
	return topics, nil
}
