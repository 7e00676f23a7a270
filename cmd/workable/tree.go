package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Render the seeded hierarchy as an ASCII tree",
	Long: `Seeds the registry with the sample pipeline and renders it as a
box-drawing tree. With --all, every root in the registry is rendered.`,
	Run: func(cmd *cobra.Command, args []string) {
		container, err := buildContainer()
		exitOn(err)
		defer container.Shutdown()

		rootID, err := seedRegistry(cmd.Context(), container)
		exitOn(err)

		depth, _ := cmd.Flags().GetInt("depth")
		all, _ := cmd.Flags().GetBool("all")

		roots := []string{rootID}
		if all {
			roots = container.Registry.GetAllRoots()
		}

		for i, id := range roots {
			if i > 0 {
				fmt.Println()
			}
			out, err := container.Visualizer.RenderASCII(id, depth)
			exitOn(err)
			fmt.Print(out)
		}
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().Int("depth", 10, "Maximum depth to descend")
	treeCmd.Flags().Bool("all", false, "Render every root, not just the pipeline")
}
