// Package export renders read-only views of a unit registry: recursive
// tree snapshots, box-drawing ASCII, JSON, YAML and Mermaid flowcharts.
// The walkers guard against reference cycles and runaway depth here, at
// the view layer, so the domain entities stay free of traversal policy.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"workable/domain/core/aggregates"
	"workable/domain/core/entities"
	"workable/domain/core/valueobjects"
	pkgerrors "workable/pkg/errors"
)

// TreeNode is a serializable snapshot of one unit in a tree walk.
// Children hold resolved child frames in seq order, Locals the owned
// local units. Cycle marks a unit already on the current walk path;
// Truncated marks a unit whose subtree was cut by the depth guard.
type TreeNode struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Kind      string      `json:"kind" yaml:"kind"`
	Preview   string      `json:"preview,omitempty" yaml:"preview,omitempty"`
	Children  []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
	Locals    []*TreeNode `json:"locals,omitempty" yaml:"locals,omitempty"`
	Truncated bool        `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Cycle     bool        `json:"cycle,omitempty" yaml:"cycle,omitempty"`
}

// Visualizer renders views over a registry. It never mutates the
// registry or its units.
type Visualizer struct {
	registry *aggregates.Registry
}

// NewVisualizer creates a visualizer over the given registry
func NewVisualizer(registry *aggregates.Registry) *Visualizer {
	return &Visualizer{registry: registry}
}

// Tree walks the unit hierarchy from rootID down to maxDepth levels and
// returns it as a TreeNode snapshot. A unit that references itself
// through any chain of child frames is reported once more with Cycle
// set and not descended into.
func (v *Visualizer) Tree(rootID string, maxDepth int) (*TreeNode, error) {
	if maxDepth < 1 {
		return nil, pkgerrors.NewExportError(
			"INVALID_DEPTH",
			fmt.Sprintf("max depth must be at least 1, got %d", maxDepth),
		)
	}

	id, err := valueobjects.NewUnitIDFromString(rootID)
	if err != nil {
		return nil, pkgerrors.NewExportError(
			"INVALID_ROOT",
			fmt.Sprintf("malformed root id %q", rootID),
		)
	}

	root, ok := v.registry.Get(id)
	if !ok {
		return nil, pkgerrors.NewExportError(
			"ROOT_NOT_FOUND",
			fmt.Sprintf("unit %s is not registered", rootID),
		).WithDetail("unit_id", rootID)
	}

	visited := make(map[string]bool)
	return v.walk(root, 1, maxDepth, visited)
}

// Forest renders every root the registry knows, in GetAllRoots order.
// An empty registry yields an empty forest.
func (v *Visualizer) Forest(maxDepth int) ([]*TreeNode, error) {
	if maxDepth < 1 {
		return nil, pkgerrors.NewExportError(
			"INVALID_DEPTH",
			fmt.Sprintf("max depth must be at least 1, got %d", maxDepth),
		)
	}

	roots := v.registry.GetAllRoots()
	forest := make([]*TreeNode, 0, len(roots))
	for _, rootID := range roots {
		tree, err := v.Tree(rootID, maxDepth)
		if err != nil {
			return nil, err
		}
		forest = append(forest, tree)
	}

	return forest, nil
}

// RenderASCII renders the tree as box-drawing text, children before
// locals, locals suffixed with their origin.
func (v *Visualizer) RenderASCII(rootID string, maxDepth int) (string, error) {
	root, err := v.Tree(rootID, maxDepth)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(nodeLabel(root, false))
	sb.WriteString("\n")
	renderBranches(&sb, root, "")

	return sb.String(), nil
}

// ExportJSON renders the tree as indented JSON
func (v *Visualizer) ExportJSON(rootID string, maxDepth int) (string, error) {
	root, err := v.Tree(rootID, maxDepth)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", pkgerrors.NewExportError("ENCODE_FAILED", "failed to encode tree as JSON").
			WithDetail("cause", err.Error())
	}

	return string(data), nil
}

// ExportYAML renders the tree as YAML
func (v *Visualizer) ExportYAML(rootID string, maxDepth int) (string, error) {
	root, err := v.Tree(rootID, maxDepth)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return "", pkgerrors.NewExportError("ENCODE_FAILED", "failed to encode tree as YAML").
			WithDetail("cause", err.Error())
	}

	return string(data), nil
}

// Mermaid renders the whole registry as a flowchart. Registered atomic
// units are rectangles, composite units subroutine boxes, locals
// rounded. Child frames draw solid arrows, local ownership dashed ones.
// Child frames whose id resolves nowhere draw no edge.
func (v *Visualizer) Mermaid() (string, error) {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	declared := make(map[string]bool)
	units := v.registry.GetAll()

	for _, unit := range units {
		declareUnit(&sb, unit, false, declared)
	}
	for _, unit := range units {
		declareLocals(&sb, unit, declared)
	}

	for _, unit := range units {
		owner := mermaidID(unit.ID().String())
		for _, frame := range unit.Content().GetFramesByType(valueobjects.FrameTypeChild) {
			target := frame.RefID().String()
			if !declared[target] {
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", owner, mermaidID(target)))
		}
		drawLocalEdges(&sb, unit)
	}

	return sb.String(), nil
}

func (v *Visualizer) walk(unit *entities.Unit, depth, maxDepth int, visited map[string]bool) (*TreeNode, error) {
	summary := unit.Summary()
	node := &TreeNode{
		ID:      summary.ID,
		Name:    summary.Name,
		Kind:    summary.Kind,
		Preview: summary.Preview,
	}

	if visited[summary.ID] {
		node.Cycle = true
		return node, nil
	}

	if depth >= maxDepth {
		if summary.ChildCount > 0 || summary.LocalCount > 0 {
			node.Truncated = true
		}
		return node, nil
	}

	// Path-based, not global: a unit reachable along two sibling
	// branches renders under both, only a true cycle is cut.
	visited[summary.ID] = true
	defer delete(visited, summary.ID)

	if unit.IsComposite() {
		children, err := unit.GetChildren()
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			childNode, err := v.walk(child, depth+1, maxDepth, visited)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, childNode)
		}
	}

	for _, local := range unit.GetLocals() {
		localNode, err := v.walk(local, depth+1, maxDepth, visited)
		if err != nil {
			return nil, err
		}
		node.Locals = append(node.Locals, localNode)
	}

	return node, nil
}

func renderBranches(sb *strings.Builder, node *TreeNode, prefix string) {
	total := len(node.Children) + len(node.Locals)
	index := 0

	writeEntry := func(entry *TreeNode, local bool) {
		index++
		connector, childPrefix := "├── ", prefix+"│   "
		if index == total {
			connector, childPrefix = "└── ", prefix+"    "
		}

		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(nodeLabel(entry, local))
		sb.WriteString("\n")
		renderBranches(sb, entry, childPrefix)
	}

	for _, child := range node.Children {
		writeEntry(child, false)
	}
	for _, local := range node.Locals {
		writeEntry(local, true)
	}
}

func nodeLabel(node *TreeNode, local bool) string {
	label := fmt.Sprintf("%s [%s]", node.Name, node.Kind)
	if local {
		label += " (local)"
	}
	if node.Cycle {
		label += " (cycle)"
	}
	if node.Truncated {
		label += " ..."
	}
	return label
}

func declareUnit(sb *strings.Builder, unit *entities.Unit, local bool, declared map[string]bool) {
	key := unit.ID().String()
	if declared[key] {
		return
	}
	declared[key] = true

	label := escapeMermaidLabel(unit.Name())
	switch {
	case local:
		sb.WriteString(fmt.Sprintf("    %s(\"%s\")\n", mermaidID(key), label))
	case unit.IsComposite():
		sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", mermaidID(key), label))
	default:
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", mermaidID(key), label))
	}
}

func declareLocals(sb *strings.Builder, owner *entities.Unit, declared map[string]bool) {
	for _, local := range owner.GetLocals() {
		declareUnit(sb, local, true, declared)
		declareLocals(sb, local, declared)
	}
}

func drawLocalEdges(sb *strings.Builder, owner *entities.Unit) {
	ownerID := mermaidID(owner.ID().String())
	for _, local := range owner.GetLocals() {
		sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", ownerID, mermaidID(local.ID().String())))
		drawLocalEdges(sb, local)
	}
}

// mermaidID turns a uuid into a safe mermaid node id. Ids may not start
// with a digit, hence the prefix.
func mermaidID(id string) string {
	replacer := strings.NewReplacer("-", "_", ".", "_", "/", "_", "\\", "_")
	return "u_" + replacer.Replace(id)
}

func escapeMermaidLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
