package wiki

import (
	"context"
	"strings"
	"testing"

	"github.com/inkgraph/backend/pkg/common"
)

func TestBuildContextDeterministicOrder(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	for _, node := range []common.EntityNode{
		{Name: "Zadok", Category: "character", Summary: map[string]string{"c1": "a priest"}},
		{Name: "Abel", Category: "character", Summary: map[string]string{"c1": "a shepherd"}},
		{Name: "Miriam", Category: "character", Summary: map[string]string{"c2": "a singer"}},
	} {
		if err := graph.AddEntityNode(ctx, "book", node); err != nil {
			t.Fatalf("failed to seed node: %v", err)
		}
	}
	if err := graph.AddEdge(ctx, "book", "Zadok", "Abel", "mentor_of"); err != nil {
		t.Fatalf("failed to seed edge: %v", err)
	}

	assembler := NewContextAssembler(graph, "book", 1, 10, 0)

	first, err := assembler.BuildContext(ctx, []string{"Zadok", "Miriam"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := assembler.BuildContext(ctx, []string{"Miriam", "Zadok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("context must be deterministic regardless of active order:\n%q\nvs\n%q", first, second)
	}

	abel := strings.Index(first, "## Abel")
	miriam := strings.Index(first, "## Miriam")
	zadok := strings.Index(first, "## Zadok")
	if abel < 0 || miriam < 0 || zadok < 0 {
		t.Fatalf("missing entity blocks in context:\n%s", first)
	}
	if !(abel < miriam && miriam < zadok) {
		t.Errorf("entities must render sorted by name:\n%s", first)
	}
	if !strings.Contains(first, "Relations: mentor_of -> Abel") {
		t.Errorf("missing relations line:\n%s", first)
	}
	if !strings.Contains(first, "Categories: character") {
		t.Errorf("missing categories line:\n%s", first)
	}
}

func TestBuildContextUnknownActiveSkipped(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	assembler := NewContextAssembler(graph, "book", 1, 10, 0)

	rendered, err := assembler.BuildContext(ctx, []string{"Nobody"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered != "" {
		t.Errorf("expected empty context for unknown entity, got %q", rendered)
	}
}

func TestBuildContextAliasResolved(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	if err := graph.AddEntityNode(ctx, "book", common.EntityNode{
		Name:    "Gandalf",
		Summary: map[string]string{"c1": "a wizard"},
	}); err != nil {
		t.Fatalf("failed to seed node: %v", err)
	}
	if err := graph.CreateAlias(ctx, "book", "Mithrandir", "Gandalf"); err != nil {
		t.Fatalf("failed to seed alias: %v", err)
	}

	assembler := NewContextAssembler(graph, "book", 1, 10, 0)
	rendered, err := assembler.BuildContext(ctx, []string{"Mithrandir"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rendered, "## Gandalf") {
		t.Errorf("alias must resolve to the canonical node:\n%s", rendered)
	}
	if strings.Contains(rendered, "Mithrandir") {
		t.Errorf("alias name must not render as its own block:\n%s", rendered)
	}
}

func TestRenderEntitySummaryTail(t *testing.T) {
	graph := newFakeGraphStore()
	assembler := NewContextAssembler(graph, "book", 1, 2, 0)

	node := &common.EntityNode{
		Name: "Arden",
		Summary: map[string]string{
			"c1":   "introduced",
			"c2-4": "travels north",
			"c5":   "reaches the capital",
		},
	}

	var b strings.Builder
	assembler.renderEntity(&b, node)
	rendered := b.String()

	if strings.Contains(rendered, "c1:") {
		t.Errorf("oldest summary must be dropped past the cap:\n%s", rendered)
	}
	c24 := strings.Index(rendered, "c2-4:")
	c5 := strings.Index(rendered, "c5:")
	if c24 < 0 || c5 < 0 {
		t.Fatalf("expected the two newest summaries:\n%s", rendered)
	}
	if c24 > c5 {
		t.Errorf("summaries must render in chapter order:\n%s", rendered)
	}
}

func TestBuildContextForUsesDepthOne(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	for _, name := range []string{"A", "B", "C"} {
		if err := graph.AddEntityNode(ctx, "book", common.EntityNode{
			Name:    name,
			Summary: map[string]string{"c1": "seed"},
		}); err != nil {
			t.Fatalf("failed to seed node: %v", err)
		}
	}
	if err := graph.AddEdge(ctx, "book", "A", "B", "knows"); err != nil {
		t.Fatalf("failed to seed edge: %v", err)
	}
	if err := graph.AddEdge(ctx, "book", "B", "C", "knows"); err != nil {
		t.Fatalf("failed to seed edge: %v", err)
	}

	assembler := NewContextAssembler(graph, "book", 3, 10, 0)
	rendered, err := assembler.BuildContextFor(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rendered, "## B") {
		t.Errorf("depth-1 neighborhood must include direct neighbors:\n%s", rendered)
	}
	if strings.Contains(rendered, "## C") {
		t.Errorf("depth-1 neighborhood must not include two-hop nodes:\n%s", rendered)
	}
}
