package wiki

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/inkgraph/backend/pkg/ai"
	"github.com/inkgraph/backend/pkg/common"
	"github.com/inkgraph/backend/pkg/store"
)

// In-memory fakes shared by the package tests.

type fakeGraphStore struct {
	mu      sync.Mutex
	nodes   map[string]*common.EntityNode
	edges   []common.Edge
	aliases map[string]string
}

func newFakeGraphStore() *fakeGraphStore {
	return &fakeGraphStore{
		nodes:   make(map[string]*common.EntityNode),
		aliases: make(map[string]string),
	}
}

func (g *fakeGraphStore) AddEntityNode(_ context.Context, _ string, node common.EntityNode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[node.Name]; ok {
		return fmt.Errorf("node already exists: %s", node.Name)
	}
	clone := node
	g.nodes[node.Name] = &clone
	return nil
}

func (g *fakeGraphStore) UpdateEntityNode(_ context.Context, _ string, node common.EntityNode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	existing, ok := g.nodes[node.Name]
	if !ok {
		clone := node
		g.nodes[node.Name] = &clone
		return nil
	}
	if node.Category != "" {
		existing.Category = node.Category
	}
	if existing.Summary == nil {
		existing.Summary = make(map[string]string)
	}
	for key, value := range node.Summary {
		if _, taken := existing.Summary[key]; !taken {
			existing.Summary[key] = value
		}
	}
	return nil
}

func (g *fakeGraphStore) GetEntityNode(_ context.Context, _ string, name string) (*common.EntityNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if to, ok := g.aliases[name]; ok {
		name = to
	}
	node, ok := g.nodes[name]
	if !ok {
		return nil, nil
	}
	clone := *node
	clone.Relations = nil
	for _, e := range g.edges {
		if e.Source == name {
			clone.Relations = append(clone.Relations, common.Relation{Target: e.Target, Type: e.Type})
		}
	}
	return &clone, nil
}

func (g *fakeGraphStore) ListEntityNodes(ctx context.Context, bookID string) ([]common.EntityNode, error) {
	g.mu.Lock()
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	g.mu.Unlock()
	sort.Strings(names)

	out := make([]common.EntityNode, 0, len(names))
	for _, name := range names {
		node, err := g.GetEntityNode(ctx, bookID, name)
		if err != nil {
			return nil, err
		}
		out = append(out, *node)
	}
	return out, nil
}

func (g *fakeGraphStore) AddEdge(_ context.Context, _ string, source, target, edgeType string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[target]; !ok {
		return fmt.Errorf("%w: %s", store.ErrEdgeTargetMissing, target)
	}
	if _, ok := g.nodes[source]; !ok {
		return fmt.Errorf("edge source does not exist: %s", source)
	}
	for _, e := range g.edges {
		if e.Source == source && e.Target == target && e.Type == edgeType {
			return nil
		}
	}
	g.edges = append(g.edges, common.Edge{Source: source, Target: target, Type: edgeType})
	return nil
}

func (g *fakeGraphStore) CreateAlias(_ context.Context, _ string, from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if resolved, ok := g.aliases[to]; ok {
		to = resolved
	}
	g.aliases[from] = to
	for key, value := range g.aliases {
		if value == from {
			g.aliases[key] = to
		}
	}
	return nil
}

func (g *fakeGraphStore) BFS(_ context.Context, _ string, start string, depth int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	visited := map[string]bool{start: true}
	frontier := []string{start}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		next := make([]string, 0)
		for _, name := range frontier {
			for _, e := range g.edges {
				if e.Source == name && !visited[e.Target] {
					visited[e.Target] = true
					next = append(next, e.Target)
				}
			}
		}
		frontier = next
	}
	out := make([]string, 0, len(visited))
	for name := range visited {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (g *fakeGraphStore) GetCategories(_ context.Context, _ string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	seen := make(map[string]bool)
	for _, node := range g.nodes {
		if node.Category != "" {
			seen[node.Category] = true
		}
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out, nil
}

type fakeProgressStore struct {
	mu       sync.Mutex
	chapters map[string]int
	saves    int
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{chapters: make(map[string]int)}
}

func (p *fakeProgressStore) GetProgress(_ context.Context, bookID string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	chapter, ok := p.chapters[bookID]
	if !ok {
		return 1, nil
	}
	return chapter, nil
}

func (p *fakeProgressStore) SaveProgress(_ context.Context, bookID string, chapter int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chapters[bookID] = chapter
	p.saves++
	return nil
}

func (p *fakeProgressStore) ResetProgress(_ context.Context, bookID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.chapters, bookID)
	return nil
}

type fakeCorpusStore struct {
	mu       sync.Mutex
	chapters map[string]map[int]string
}

func newFakeCorpusStore() *fakeCorpusStore {
	return &fakeCorpusStore{chapters: make(map[string]map[int]string)}
}

func (c *fakeCorpusStore) GetChapter(_ context.Context, bookID string, chapter int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chapters[bookID][chapter], nil
}

func (c *fakeCorpusStore) PutChapter(_ context.Context, bookID string, chapter int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chapters[bookID] == nil {
		c.chapters[bookID] = make(map[int]string)
	}
	c.chapters[bookID][chapter] = text
	return nil
}

func (c *fakeCorpusStore) CountChapters(_ context.Context, bookID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chapters[bookID]), nil
}

func (c *fakeCorpusStore) DeleteBook(_ context.Context, bookID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.chapters, bookID)
	return nil
}

type fakeBuffer struct {
	mu    sync.Mutex
	saved map[string][]store.BufferedExtraction
}

func newFakeBuffer() *fakeBuffer {
	return &fakeBuffer{saved: make(map[string][]store.BufferedExtraction)}
}

func (b *fakeBuffer) SaveEntities(_ context.Context, bookID string, extraction store.BufferedExtraction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved[bookID] = append(b.saved[bookID], extraction)
	return nil
}

func (b *fakeBuffer) GetEntities(_ context.Context, bookID string) ([]store.BufferedExtraction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saved[bookID], nil
}

func (b *fakeBuffer) ClearBuffer(_ context.Context, bookID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.saved, bookID)
	return nil
}

// fakeAIClient replays scripted responses. Extractions are consumed in
// order by GenerateCompletionWithFormat; completions in order by
// GenerateCompletion. formatFailures forces that many leading failures.
type fakeAIClient struct {
	mu             sync.Mutex
	extractions    []EntityExtraction
	completions    []string
	formatFailures int
	formatCalls    int
}

func (f *fakeAIClient) GenerateCompletion(_ context.Context, _ string, _ ...ai.GenerateOption) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.completions) == 0 {
		return "", nil
	}
	answer := f.completions[0]
	f.completions = f.completions[1:]
	return answer, nil
}

func (f *fakeAIClient) GenerateCompletionWithFormat(
	_ context.Context, _ string, _ string, _ string, out any, _ ...ai.GenerateOption,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formatCalls++
	if f.formatFailures > 0 {
		f.formatFailures--
		return errors.New("scripted extraction failure")
	}
	if len(f.extractions) == 0 {
		return errors.New("no scripted extraction left")
	}
	extraction := f.extractions[0]
	f.extractions = f.extractions[1:]
	*(out.(*EntityExtraction)) = extraction
	return nil
}

func (f *fakeAIClient) GenerateEmbedding(_ context.Context, _ []byte) ([]float32, error) {
	return make([]float32, 4), nil
}

func (f *fakeAIClient) ResetMetrics() {}

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics {
	return ai.ModelMetrics{}
}
