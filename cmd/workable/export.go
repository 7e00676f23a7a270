package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the seeded hierarchy as JSON, YAML or Mermaid",
	Long: `Seeds the registry with the sample pipeline and writes it to stdout
in the chosen format. JSON and YAML export the pipeline tree; mermaid
draws the whole registry as a flowchart.`,
	Run: func(cmd *cobra.Command, args []string) {
		container, err := buildContainer()
		exitOn(err)
		defer container.Shutdown()

		rootID, err := seedRegistry(cmd.Context(), container)
		exitOn(err)

		format, _ := cmd.Flags().GetString("format")
		depth, _ := cmd.Flags().GetInt("depth")

		var out string
		switch format {
		case "json":
			out, err = container.Visualizer.ExportJSON(rootID, depth)
		case "yaml":
			out, err = container.Visualizer.ExportYAML(rootID, depth)
		case "mermaid":
			out, err = container.Visualizer.Mermaid()
		default:
			fmt.Printf("Error: unknown format %q (want json, yaml or mermaid)\n", format)
			os.Exit(1)
		}
		exitOn(err)

		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml or mermaid")
	exportCmd.Flags().Int("depth", 10, "Maximum depth to descend")
}
