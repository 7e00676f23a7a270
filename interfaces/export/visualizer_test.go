package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workable/domain/core/aggregates"
	"workable/domain/core/entities"
	"workable/domain/core/valueobjects"
	"workable/interfaces/export"
	pkgerrors "workable/pkg/errors"
)

func newFixture(t *testing.T) (*aggregates.Registry, *export.Visualizer) {
	t.Helper()
	registry := aggregates.NewRegistry()
	return registry, export.NewVisualizer(registry)
}

func create(t *testing.T, registry *aggregates.Registry, name string, atomic bool) *entities.Unit {
	t.Helper()

	params := aggregates.CreateUnitParams{Name: name, Description: name + " unit", Atomic: atomic}
	if atomic {
		params.Content = name + "()"
	}

	unit, err := registry.Create(params)
	require.NoError(t, err)
	return unit
}

func attachLocal(t *testing.T, owner *entities.Unit, name string) *entities.Unit {
	t.Helper()

	local, err := entities.NewAtomicUnit(name, "locally owned helper", valueobjects.Payload{})
	require.NoError(t, err)
	_, err = owner.AddLocal(local)
	require.NoError(t, err)
	return local
}

func TestVisualizer_Tree(t *testing.T) {
	registry, viz := newFixture(t)

	plan := create(t, registry, "plan", false)
	fetch := create(t, registry, "fetch", true)
	parse := create(t, registry, "parse", false)
	tokenize := create(t, registry, "tokenize", true)

	_, err := plan.AddChild(fetch)
	require.NoError(t, err)
	_, err = plan.AddChild(parse)
	require.NoError(t, err)
	_, err = parse.AddChild(tokenize)
	require.NoError(t, err)
	attachLocal(t, plan, "emit")

	tree, err := viz.Tree(plan.ID().String(), 10)
	require.NoError(t, err)

	assert.Equal(t, plan.ID().String(), tree.ID)
	assert.Equal(t, "plan", tree.Name)
	assert.Equal(t, "composite", tree.Kind)
	assert.Empty(t, tree.Preview)

	require.Len(t, tree.Children, 2)
	assert.Equal(t, "fetch", tree.Children[0].Name)
	assert.Equal(t, "atomic", tree.Children[0].Kind)
	assert.Equal(t, "fetch()", tree.Children[0].Preview)

	assert.Equal(t, "parse", tree.Children[1].Name)
	require.Len(t, tree.Children[1].Children, 1)
	assert.Equal(t, "tokenize", tree.Children[1].Children[0].Name)

	require.Len(t, tree.Locals, 1)
	assert.Equal(t, "emit", tree.Locals[0].Name)
	assert.False(t, tree.Truncated)
	assert.False(t, tree.Cycle)
}

func TestVisualizer_Tree_Validation(t *testing.T) {
	registry, viz := newFixture(t)
	unit := create(t, registry, "lonely", true)

	_, err := viz.Tree(unit.ID().String(), 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExport))
	assert.Contains(t, err.Error(), "max depth")

	_, err = viz.Tree("not-a-uuid", 5)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExport))
	assert.Contains(t, err.Error(), "malformed root id")

	_, err = viz.Tree(valueobjects.NewUnitID().String(), 5)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExport))
	assert.Contains(t, err.Error(), "not registered")
}

func TestVisualizer_Tree_DepthGuard(t *testing.T) {
	registry, viz := newFixture(t)

	outer := create(t, registry, "outer", false)
	middle := create(t, registry, "middle", false)
	leaf := create(t, registry, "leaf", true)

	_, err := outer.AddChild(middle)
	require.NoError(t, err)
	_, err = middle.AddChild(leaf)
	require.NoError(t, err)

	tree, err := viz.Tree(outer.ID().String(), 2)
	require.NoError(t, err)

	require.Len(t, tree.Children, 1)
	cut := tree.Children[0]
	assert.Equal(t, "middle", cut.Name)
	assert.True(t, cut.Truncated)
	assert.Empty(t, cut.Children)

	// A childless unit at the limit is a plain leaf, not a truncation.
	tree, err = viz.Tree(middle.ID().String(), 2)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.False(t, tree.Children[0].Truncated)
}

func TestVisualizer_Tree_CycleGuard(t *testing.T) {
	registry, viz := newFixture(t)

	ping := create(t, registry, "ping", false)
	pong := create(t, registry, "pong", false)

	_, err := ping.AddChild(pong)
	require.NoError(t, err)
	_, err = pong.AddChild(ping)
	require.NoError(t, err)

	tree, err := viz.Tree(ping.ID().String(), 10)
	require.NoError(t, err)

	require.Len(t, tree.Children, 1)
	require.Len(t, tree.Children[0].Children, 1)
	back := tree.Children[0].Children[0]
	assert.Equal(t, ping.ID().String(), back.ID)
	assert.True(t, back.Cycle)
	assert.Empty(t, back.Children)
}

func TestVisualizer_Tree_DiamondIsNotACycle(t *testing.T) {
	registry, viz := newFixture(t)

	top := create(t, registry, "top", false)
	left := create(t, registry, "left", false)
	right := create(t, registry, "right", false)
	shared := create(t, registry, "shared", true)

	for _, parent := range []*entities.Unit{left, right} {
		_, err := top.AddChild(parent)
		require.NoError(t, err)
		_, err = parent.AddChild(shared)
		require.NoError(t, err)
	}

	tree, err := viz.Tree(top.ID().String(), 10)
	require.NoError(t, err)

	require.Len(t, tree.Children, 2)
	for _, branch := range tree.Children {
		require.Len(t, branch.Children, 1)
		assert.Equal(t, "shared", branch.Children[0].Name)
		assert.False(t, branch.Children[0].Cycle)
	}
}

func TestVisualizer_RenderASCII(t *testing.T) {
	registry, viz := newFixture(t)

	plan := create(t, registry, "plan", false)
	fetch := create(t, registry, "fetch", true)
	parse := create(t, registry, "parse", false)
	tokenize := create(t, registry, "tokenize", true)

	_, err := plan.AddChild(fetch)
	require.NoError(t, err)
	_, err = plan.AddChild(parse)
	require.NoError(t, err)
	_, err = parse.AddChild(tokenize)
	require.NoError(t, err)
	attachLocal(t, plan, "emit")

	out, err := viz.RenderASCII(plan.ID().String(), 10)
	require.NoError(t, err)

	want := "plan [composite]\n" +
		"├── fetch [atomic]\n" +
		"├── parse [composite]\n" +
		"│   └── tokenize [atomic]\n" +
		"└── emit [atomic] (local)\n"
	assert.Equal(t, want, out)
}

func TestVisualizer_RenderASCII_MarksCycles(t *testing.T) {
	registry, viz := newFixture(t)

	ping := create(t, registry, "ping", false)
	pong := create(t, registry, "pong", false)

	_, err := ping.AddChild(pong)
	require.NoError(t, err)
	_, err = pong.AddChild(ping)
	require.NoError(t, err)

	out, err := viz.RenderASCII(ping.ID().String(), 10)
	require.NoError(t, err)
	assert.Contains(t, out, "ping [composite] (cycle)")
}

func TestVisualizer_ExportJSON(t *testing.T) {
	registry, viz := newFixture(t)

	plan := create(t, registry, "plan", false)
	fetch := create(t, registry, "fetch", true)
	_, err := plan.AddChild(fetch)
	require.NoError(t, err)

	out, err := viz.ExportJSON(plan.ID().String(), 10)
	require.NoError(t, err)

	var tree export.TreeNode
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Equal(t, "plan", tree.Name)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "fetch()", tree.Children[0].Preview)

	// Flags are omitted when unset.
	assert.NotContains(t, out, "cycle")
	assert.NotContains(t, out, "truncated")
}

func TestVisualizer_ExportYAML(t *testing.T) {
	registry, viz := newFixture(t)

	plan := create(t, registry, "plan", false)
	fetch := create(t, registry, "fetch", true)
	_, err := plan.AddChild(fetch)
	require.NoError(t, err)

	out, err := viz.ExportYAML(plan.ID().String(), 10)
	require.NoError(t, err)

	assert.Contains(t, out, "name: plan")
	assert.Contains(t, out, "kind: composite")
	assert.Contains(t, out, "name: fetch")
	assert.Contains(t, out, "preview: fetch()")
}

func TestVisualizer_Mermaid(t *testing.T) {
	registry, viz := newFixture(t)

	plan := create(t, registry, "plan", false)
	fetch := create(t, registry, "fetch", true)
	_, err := plan.AddChild(fetch)
	require.NoError(t, err)
	local := attachLocal(t, plan, "emit")

	out, err := viz.Mermaid()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, `[["plan"]]`)
	assert.Contains(t, out, `["fetch"]`)
	assert.Contains(t, out, `("emit")`)

	planToken := "u_" + strings.ReplaceAll(plan.ID().String(), "-", "_")
	fetchToken := "u_" + strings.ReplaceAll(fetch.ID().String(), "-", "_")
	localToken := "u_" + strings.ReplaceAll(local.ID().String(), "-", "_")
	assert.Contains(t, out, planToken+" --> "+fetchToken)
	assert.Contains(t, out, planToken+" -.-> "+localToken)
}

func TestVisualizer_Mermaid_SkipsGhostChildFrames(t *testing.T) {
	registry, viz := newFixture(t)

	plan := create(t, registry, "plan", false)
	_, err := plan.Content().AddFrame("stale", "points at an unregistered id", valueobjects.FrameTypeChild, valueobjects.NewUnitID(), nil)
	require.NoError(t, err)

	out, err := viz.Mermaid()
	require.NoError(t, err)
	assert.NotContains(t, out, "-->")
	assert.NotContains(t, out, "stale")
}

func TestVisualizer_Mermaid_EscapesQuotedNames(t *testing.T) {
	registry, viz := newFixture(t)
	create(t, registry, `say "hi"`, false)

	out, err := viz.Mermaid()
	require.NoError(t, err)
	assert.Contains(t, out, `[["say 'hi'"]]`)
}

func TestVisualizer_Forest(t *testing.T) {
	registry, viz := newFixture(t)

	alpha := create(t, registry, "alpha", false)
	beta := create(t, registry, "beta", true)
	child := create(t, registry, "child", true)
	_, err := alpha.AddChild(child)
	require.NoError(t, err)

	forest, err := viz.Forest(5)
	require.NoError(t, err)
	require.Len(t, forest, 2)

	wantOrder := []string{alpha.ID().String(), beta.ID().String()}
	if wantOrder[0] > wantOrder[1] {
		wantOrder[0], wantOrder[1] = wantOrder[1], wantOrder[0]
	}
	assert.Equal(t, wantOrder[0], forest[0].ID)
	assert.Equal(t, wantOrder[1], forest[1].ID)

	_, err = viz.Forest(0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExport))
}

func TestVisualizer_Forest_EmptyRegistry(t *testing.T) {
	_, viz := newFixture(t)

	forest, err := viz.Forest(3)
	require.NoError(t, err)
	assert.Empty(t, forest)
}
