package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"workable/application/commands"
)

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk a unit through its full lifecycle",
	Long: `Creates an atomic unit, converts it to composite and back, attaches
and removes a child along the way, and finishes with an integrity check.
Each step prints what changed.`,
	Run: func(cmd *cobra.Command, args []string) {
		container, err := buildContainer()
		exitOn(err)
		defer container.Shutdown()

		ctx := cmd.Context()
		svc := container.UnitService

		step("create an atomic unit")
		draft, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
			Name:        "draft",
			Description: "release announcement",
			Atomic:      true,
			Content:     "print('hello release')",
		})
		exitOn(err)
		fmt.Printf("  %s %q created in %s mode\n", draft.ID(), draft.Name(), draft.Mode())

		step("convert to composite: the payload moves into a local")
		exitOn(svc.ConvertUnit(ctx, commands.ConvertUnitCommand{
			UnitID:    draft.ID().String(),
			Direction: commands.DirectionComplex,
		}))
		fmt.Printf("  mode=%s locals=%d frames=%d\n",
			draft.Mode(), draft.Content().LocalCount(), draft.Content().FrameCount())

		step("attach a child unit")
		intro, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
			Name:        "intro",
			Description: "opening paragraph",
			Atomic:      true,
			Content:     "print('welcome')",
		})
		exitOn(err)
		seq, err := svc.AttachChild(ctx, commands.AttachChildCommand{
			ParentID: draft.ID().String(),
			ChildID:  intro.ID().String(),
		})
		exitOn(err)
		fmt.Printf("  %q attached at seq %d\n", intro.Name(), seq)

		step("move the local frame behind the child")
		exitOn(svc.MoveFrame(ctx, draft.ID().String(), 0, 1))
		for _, frame := range draft.Frames() {
			fmt.Printf("  seq %d: %s (%s)\n", frame.Seq(), frame.Name(), frame.Type())
		}

		step("delete the child: its frames are stripped from the parent")
		exitOn(svc.DeleteUnit(ctx, commands.DeleteUnitCommand{UnitID: intro.ID().String()}))
		fmt.Printf("  frames=%d locals=%d\n", draft.Content().FrameCount(), draft.Content().LocalCount())

		step("convert back to atomic: the single local restores the payload")
		exitOn(svc.ConvertUnit(ctx, commands.ConvertUnitCommand{
			UnitID:    draft.ID().String(),
			Direction: commands.DirectionSimple,
		}))
		payload, err := draft.Payload()
		exitOn(err)
		fmt.Printf("  mode=%s payload=%q\n", draft.Mode(), payload.Body())

		step("verify content integrity")
		orphans, ghosts, err := svc.RepairUnit(ctx, draft.ID().String())
		exitOn(err)
		fmt.Printf("  orphans pruned=%d ghosts relinked=%d\n", orphans, ghosts)

		step("registry census")
		stats := container.Registry.Statistics()
		fmt.Printf("  units=%d roots=%d frames=%d\n", stats.Units, stats.Roots, stats.Frames)
	},
}

func step(text string) {
	fmt.Printf("\n== %s\n", text)
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
