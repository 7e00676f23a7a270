package integration

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workable/application/commands"
	"workable/domain/core/entities"
	"workable/infrastructure/config"
	"workable/infrastructure/di"
	"workable/interfaces/export"
)

func newTestContainer(t *testing.T) *di.Container {
	t.Helper()

	cfg := config.Default()
	cfg.LogLevel = "error"

	container, err := di.NewContainer(cfg)
	require.NoError(t, err)
	t.Cleanup(container.Shutdown)

	return container
}

// TestUnitLifecycle drives a hierarchy through the whole stack: service,
// registry, bus, metrics and exporters. The stages share state and run
// in order.
func TestUnitLifecycle(t *testing.T) {
	container := newTestContainer(t)
	ctx := context.Background()
	svc := container.UnitService

	var pipeline, fetch, parse, scratch *entities.Unit

	t.Run("create the pipeline with a child and a local", func(t *testing.T) {
		var err error
		pipeline, err = svc.CreateUnit(ctx, commands.CreateUnitCommand{
			Name:        "pipeline",
			Description: "nightly data pipeline",
		})
		require.NoError(t, err)

		fetch, err = svc.CreateUnit(ctx, commands.CreateUnitCommand{
			Name:        "fetch",
			Description: "pull the raw records",
			Atomic:      true,
			Content:     "resp = fetch(source)",
		})
		require.NoError(t, err)

		seq, err := svc.AttachChild(ctx, commands.AttachChildCommand{
			ParentID: pipeline.ID().String(),
			ChildID:  fetch.ID().String(),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, seq)

		scratch, err = svc.AttachLocal(ctx, commands.AttachLocalCommand{
			OwnerID:     pipeline.ID().String(),
			Name:        "scratch",
			Description: "working buffer",
			Content:     "tmp = []",
		})
		require.NoError(t, err)

		assert.Equal(t, 2, container.Registry.Count())
		assert.False(t, container.Registry.Has(scratch.ID()))
		assert.Equal(t, 2, pipeline.Content().FrameCount())
		assert.Equal(t, 1, pipeline.Content().LocalCount())
	})

	t.Run("convert the fetch step there and back", func(t *testing.T) {
		require.NoError(t, svc.ConvertUnit(ctx, commands.ConvertUnitCommand{
			UnitID:    fetch.ID().String(),
			Direction: commands.DirectionComplex,
		}))
		assert.True(t, fetch.IsComposite())
		assert.Equal(t, 1, fetch.Content().LocalCount())

		require.NoError(t, svc.ConvertUnit(ctx, commands.ConvertUnitCommand{
			UnitID:    fetch.ID().String(),
			Direction: commands.DirectionSimple,
		}))
		assert.True(t, fetch.IsAtomic())

		payload, err := fetch.Payload()
		require.NoError(t, err)
		assert.Equal(t, "resp = fetch(source)", payload.Body())
	})

	t.Run("reorder frames and verify integrity", func(t *testing.T) {
		var err error
		parse, err = svc.CreateUnit(ctx, commands.CreateUnitCommand{
			Name:        "parse",
			Description: "normalize the response",
			Atomic:      true,
			Content:     "doc = parse(resp)",
		})
		require.NoError(t, err)

		_, err = svc.AttachChild(ctx, commands.AttachChildCommand{
			ParentID: pipeline.ID().String(),
			ChildID:  parse.ID().String(),
		})
		require.NoError(t, err)

		// Frames are fetch, scratch, parse; send the fetch frame to the end.
		require.NoError(t, svc.MoveFrame(ctx, pipeline.ID().String(), 0, 2))

		ids, err := pipeline.ChildIDs()
		require.NoError(t, err)
		require.Len(t, ids, 2)
		assert.Equal(t, parse.ID().String(), ids[0].String())
		assert.Equal(t, fetch.ID().String(), ids[1].String())

		orphans, ghosts, err := svc.RepairUnit(ctx, pipeline.ID().String())
		require.NoError(t, err)
		assert.Zero(t, orphans)
		assert.Zero(t, ghosts)
	})

	t.Run("render every export view", func(t *testing.T) {
		ascii, err := container.Visualizer.RenderASCII(pipeline.ID().String(), 10)
		require.NoError(t, err)
		assert.Contains(t, ascii, "pipeline [composite]")
		assert.Contains(t, ascii, "fetch [atomic]")
		assert.Contains(t, ascii, "scratch [atomic] (local)")

		raw, err := container.Visualizer.ExportJSON(pipeline.ID().String(), 10)
		require.NoError(t, err)
		var tree export.TreeNode
		require.NoError(t, json.Unmarshal([]byte(raw), &tree))
		require.Len(t, tree.Children, 2)
		assert.Equal(t, "parse", tree.Children[0].Name)
		assert.Equal(t, "fetch", tree.Children[1].Name)
		require.Len(t, tree.Locals, 1)

		mermaid, err := container.Visualizer.Mermaid()
		require.NoError(t, err)
		assert.Contains(t, mermaid, "flowchart TD")
		assert.Contains(t, mermaid, "-.->")
	})

	t.Run("metrics reflect the traffic", func(t *testing.T) {
		collector := container.Collector

		assert.Equal(t, float64(4), testutil.ToFloat64(collector.UnitsCreated))
		assert.Equal(t, float64(3), testutil.ToFloat64(collector.RegisteredUnits))
		assert.Equal(t, float64(1), testutil.ToFloat64(collector.FramesMoved))
		assert.Zero(t, testutil.ToFloat64(collector.Repairs))
		assert.Equal(t, float64(1),
			testutil.ToFloat64(collector.Conversions.WithLabelValues("atomic_to_composite")))
		assert.Equal(t, float64(1),
			testutil.ToFloat64(collector.Conversions.WithLabelValues("composite_to_atomic")))
		assert.Equal(t, float64(2),
			testutil.ToFloat64(collector.UnitsByKind.WithLabelValues("atomic")))
		assert.Equal(t, float64(1),
			testutil.ToFloat64(collector.UnitsByKind.WithLabelValues("composite")))
	})

	t.Run("deleting a child strips its frames everywhere", func(t *testing.T) {
		require.NoError(t, svc.DeleteUnit(ctx, commands.DeleteUnitCommand{
			UnitID: parse.ID().String(),
		}))

		assert.Equal(t, 2, container.Registry.Count())

		ids, err := pipeline.ChildIDs()
		require.NoError(t, err)
		require.Len(t, ids, 1)
		assert.Equal(t, fetch.ID().String(), ids[0].String())

		assert.Equal(t, float64(1), testutil.ToFloat64(container.Collector.UnitsDeleted))
		assert.Equal(t, float64(2), testutil.ToFloat64(container.Collector.RegisteredUnits))
	})
}

// TestMessagingAndRelationsCorrelateByUnitID exercises the exchange and
// the relation store against units they only know as id strings.
func TestMessagingAndRelationsCorrelateByUnitID(t *testing.T) {
	container := newTestContainer(t)
	ctx := context.Background()
	svc := container.UnitService

	planner, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{Name: "planner"})
	require.NoError(t, err)
	executor, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
		Name:    "executor",
		Atomic:  true,
		Content: "run()",
	})
	require.NoError(t, err)

	plannerID := planner.ID().String()
	executorID := executor.ID().String()

	t.Run("link the units", func(t *testing.T) {
		_, err := container.Relations.Link(plannerID, executorID, "delegates_to",
			"planner hands work down", map[string]interface{}{"weight": 1})
		require.NoError(t, err)

		assert.True(t, container.Relations.Has(plannerID, executorID))
		assert.Equal(t, []string{executorID}, container.Relations.Related(plannerID))
	})

	t.Run("pass a message through the inbox lifecycle", func(t *testing.T) {
		posted, err := container.Exchange.Post("run step 3", plannerID, executorID)
		require.NoError(t, err)
		require.Len(t, container.Exchange.Inbox(executorID), 1)

		msg, ok := container.Exchange.ProcessNext(executorID)
		require.True(t, ok)
		assert.Equal(t, posted.ID, msg.ID)

		require.NoError(t, container.Exchange.Archive(msg.ID))
		assert.Empty(t, container.Exchange.Inbox(executorID))
		require.Len(t, container.Exchange.Archived(executorID), 1)
	})

	t.Run("cleanup after the unit is deleted", func(t *testing.T) {
		require.NoError(t, svc.DeleteUnit(ctx, commands.DeleteUnitCommand{UnitID: executorID}))

		// Correlation keys are opaque, so the caller sweeps them.
		assert.Equal(t, 1, container.Relations.Clear(executorID))
		container.Exchange.Purge(executorID)
		assert.Empty(t, container.Exchange.Archived(executorID))
	})
}
