package wiki

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/inkgraph/backend/pkg/ai"
	"github.com/inkgraph/backend/pkg/common"
	"github.com/inkgraph/backend/pkg/logger"
	"github.com/inkgraph/backend/pkg/store"
)

// ContextAssembler renders the graph neighborhood of the active entities
// into the background text handed to the extraction prompt.
type ContextAssembler struct {
	graph  store.GraphStore
	bookID string

	bfsDepth     int
	maxSummaries int
	maxTokens    int
}

// NewContextAssembler creates an assembler with the given traversal depth,
// per-entity summary cap, and token budget. Non-positive values fall back to
// depth 1, 10 summaries, and an uncapped context.
func NewContextAssembler(
	graph store.GraphStore,
	bookID string,
	bfsDepth int,
	maxSummaries int,
	maxTokens int,
) *ContextAssembler {
	if bfsDepth < 1 {
		bfsDepth = 1
	}
	if maxSummaries < 1 {
		maxSummaries = 10
	}
	return &ContextAssembler{
		graph:        graph,
		bookID:       bookID,
		bfsDepth:     bfsDepth,
		maxSummaries: maxSummaries,
		maxTokens:    maxTokens,
	}
}

// BuildContext collects the alias-resolved active entities plus everything
// reachable within bfsDepth hops, renders each entity's most recent summary
// entries, and appends the book's category vocabulary. The result is
// deterministic: entities enumerate sorted by name.
func (a *ContextAssembler) BuildContext(ctx context.Context, active []string) (string, error) {
	included := make(map[string]bool)

	for _, name := range active {
		node, err := a.graph.GetEntityNode(ctx, a.bookID, name)
		if err != nil {
			return "", err
		}
		if node == nil {
			continue
		}

		reached, err := a.graph.BFS(ctx, a.bookID, node.Name, a.bfsDepth)
		if err != nil {
			return "", err
		}
		for _, r := range reached {
			included[r] = true
		}
	}

	names := make([]string, 0, len(included))
	for name := range included {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		node, err := a.graph.GetEntityNode(ctx, a.bookID, name)
		if err != nil {
			return "", err
		}
		if node == nil {
			continue
		}
		a.renderEntity(&b, node)
	}

	categories, err := a.graph.GetCategories(ctx, a.bookID)
	if err != nil {
		return "", err
	}
	if len(categories) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(categories, ", "))
	}

	rendered := b.String()
	if a.maxTokens > 0 {
		truncated, err := ai.TruncateTokens(rendered, a.maxTokens)
		if err != nil {
			logger.Warn("[Wiki] Token truncation failed, using full context", "err", err)
			return rendered, nil
		}
		return truncated, nil
	}
	return rendered, nil
}

// BuildContextFor renders the depth-1 neighborhood of a single entity. The
// resolver uses this narrow context for merge disambiguation.
func (a *ContextAssembler) BuildContextFor(ctx context.Context, name string) (string, error) {
	narrow := &ContextAssembler{
		graph:        a.graph,
		bookID:       a.bookID,
		bfsDepth:     1,
		maxSummaries: a.maxSummaries,
		maxTokens:    a.maxTokens,
	}
	return narrow.BuildContext(ctx, []string{name})
}

// renderEntity writes one entity block: name, category, and the tail of its
// summary entries ordered by the numeric start of the chapter-range key.
func (a *ContextAssembler) renderEntity(b *strings.Builder, node *common.EntityNode) {
	if node.Category != "" {
		fmt.Fprintf(b, "## %s (%s)\n", node.Name, node.Category)
	} else {
		fmt.Fprintf(b, "## %s\n", node.Name)
	}

	keys := make([]string, 0, len(node.Summary))
	for key := range node.Summary {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := common.ChunkRangeStart(keys[i]), common.ChunkRangeStart(keys[j])
		if si != sj {
			return si < sj
		}
		return keys[i] < keys[j]
	})
	if len(keys) > a.maxSummaries {
		keys = keys[len(keys)-a.maxSummaries:]
	}

	for _, key := range keys {
		fmt.Fprintf(b, "%s: %s\n", key, node.Summary[key])
	}

	if len(node.Relations) > 0 {
		rels := make([]string, 0, len(node.Relations))
		for _, rel := range node.Relations {
			rels = append(rels, fmt.Sprintf("%s -> %s", rel.Type, rel.Target))
		}
		fmt.Fprintf(b, "Relations: %s\n", strings.Join(rels, "; "))
	}

	b.WriteString("\n")
}
