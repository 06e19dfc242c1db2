package wiki

import (
	"context"
	"errors"
	"testing"

	"github.com/inkgraph/backend/pkg/common"
)

func seedCorpus(t *testing.T, corpus *fakeCorpusStore, bookID string, chapters ...string) {
	t.Helper()
	for i, text := range chapters {
		if err := corpus.PutChapter(context.Background(), bookID, i+1, text); err != nil {
			t.Fatalf("failed to seed chapter %d: %v", i+1, err)
		}
	}
}

func TestBuildCreatesAndLinksEntities(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	progress := newFakeProgressStore()
	corpus := newFakeCorpusStore()
	seedCorpus(t, corpus, "book", "chapter one", "chapter two", "chapter three")

	aiClient := &fakeAIClient{
		extractions: []EntityExtraction{
			{Entities: []common.ExtractedEntity{
				{
					Name:     "Kestrel",
					Category: "character",
					Summary:  "a thief in the lower city",
					Relationships: []common.ExtractedRelation{
						{Target: "Bastion", Relation: "lives in"},
						{Target: "The Crown", Relation: "steals"},
					},
				},
				{Name: "Bastion", Category: "location", Summary: "a walled city"},
			}},
			{Entities: []common.ExtractedEntity{
				{Name: "Kestrel", Category: "character", Summary: "flees the guards"},
			}},
		},
	}

	client := NewWikiClient(NewWikiClientParams{
		AIClient:    aiClient,
		Graph:       graph,
		Progress:    progress,
		Corpus:      corpus,
		ChunkLength: 2,
	})

	summary, err := client.Build(ctx, "book")
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	if summary.ChaptersProcessed != 3 {
		t.Errorf("expected 3 chapters processed, got %d", summary.ChaptersProcessed)
	}
	if summary.EntitiesCreated != 2 {
		t.Errorf("expected 2 entities created, got %d", summary.EntitiesCreated)
	}
	if summary.EntitiesMerged != 1 {
		t.Errorf("expected 1 entity merged, got %d", summary.EntitiesMerged)
	}
	if summary.LinksSkipped != 1 {
		t.Errorf("expected 1 link skipped for the unknown target, got %d", summary.LinksSkipped)
	}

	kestrel, err := graph.GetEntityNode(ctx, "book", "Kestrel")
	if err != nil || kestrel == nil {
		t.Fatalf("expected Kestrel node, got %v, %v", kestrel, err)
	}
	if kestrel.Summary["c1-2"] != "a thief in the lower city" {
		t.Errorf("missing first-chunk summary: %v", kestrel.Summary)
	}
	if kestrel.Summary["c3"] != "flees the guards" {
		t.Errorf("missing second-chunk summary: %v", kestrel.Summary)
	}
	if len(kestrel.Relations) != 1 {
		t.Fatalf("expected one linked relation, got %v", kestrel.Relations)
	}
	if kestrel.Relations[0].Target != "Bastion" || kestrel.Relations[0].Type != "lives_in" {
		t.Errorf("unexpected relation: %+v", kestrel.Relations[0])
	}

	saved, err := progress.GetProgress(ctx, "book")
	if err != nil {
		t.Fatalf("unexpected progress error: %v", err)
	}
	if saved != 4 {
		t.Errorf("expected cursor at chapter 4, got %d", saved)
	}
}

func TestBuildMergeKeepsExistingSummary(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	progress := newFakeProgressStore()
	corpus := newFakeCorpusStore()
	seedCorpus(t, corpus, "book", "chapter one")

	if err := graph.AddEntityNode(ctx, "book", common.EntityNode{
		Name:     "Kestrel",
		Category: "character",
		Summary:  map[string]string{"c1": "the original record"},
	}); err != nil {
		t.Fatalf("failed to seed node: %v", err)
	}
	_ = progress.SaveProgress(ctx, "book", 1)

	aiClient := &fakeAIClient{
		extractions: []EntityExtraction{
			{Entities: []common.ExtractedEntity{
				{Name: "Kestrel", Category: "character", Summary: "a conflicting record"},
			}},
		},
		// empty answer means same entity
		completions: []string{""},
	}

	client := NewWikiClient(NewWikiClientParams{
		AIClient: aiClient,
		Graph:    graph,
		Progress: progress,
		Corpus:   corpus,
	})

	summary, err := client.Build(ctx, "book")
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if summary.EntitiesMerged != 1 || summary.EntitiesCreated != 0 {
		t.Errorf("expected a pure merge, got %+v", summary)
	}

	node, _ := graph.GetEntityNode(ctx, "book", "Kestrel")
	if node.Summary["c1"] != "the original record" {
		t.Errorf("existing summary entry must win: %v", node.Summary)
	}
}

func TestBuildNameCollisionCreatesDistinctEntity(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	progress := newFakeProgressStore()
	corpus := newFakeCorpusStore()
	seedCorpus(t, corpus, "book", "chapter one")

	if err := graph.AddEntityNode(ctx, "book", common.EntityNode{
		Name:     "Ash",
		Category: "character",
		Summary:  map[string]string{"c1": "a soldier"},
	}); err != nil {
		t.Fatalf("failed to seed node: %v", err)
	}

	aiClient := &fakeAIClient{
		extractions: []EntityExtraction{
			{Entities: []common.ExtractedEntity{
				{Name: "Ash", Category: "location", Summary: "a burnt village"},
			}},
		},
		completions: []string{"Ash (village)"},
	}

	client := NewWikiClient(NewWikiClientParams{
		AIClient: aiClient,
		Graph:    graph,
		Progress: progress,
		Corpus:   corpus,
	})

	summary, err := client.Build(ctx, "book")
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if summary.EntitiesCreated != 1 || summary.EntitiesMerged != 0 {
		t.Errorf("expected the collision to create a distinct entity, got %+v", summary)
	}

	village, _ := graph.GetEntityNode(ctx, "book", "Ash (village)")
	if village == nil {
		t.Fatal("expected node under the disambiguated name")
	}
	if village.Summary["c1"] != "a burnt village" {
		t.Errorf("unexpected summary: %v", village.Summary)
	}

	soldier, _ := graph.GetEntityNode(ctx, "book", "Ash")
	if soldier.Summary["c1"] != "a soldier" {
		t.Errorf("original node must be untouched: %v", soldier.Summary)
	}
}

func TestBuildRetriesExtractionBeforeFailing(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	progress := newFakeProgressStore()
	corpus := newFakeCorpusStore()
	seedCorpus(t, corpus, "book", "chapter one")

	aiClient := &fakeAIClient{
		formatFailures: 2,
		extractions: []EntityExtraction{
			{Entities: []common.ExtractedEntity{
				{Name: "Kestrel", Category: "character", Summary: "a thief"},
			}},
		},
	}

	client := NewWikiClient(NewWikiClientParams{
		AIClient:   aiClient,
		Graph:      graph,
		Progress:   progress,
		Corpus:     corpus,
		MaxRetries: 3,
	})

	summary, err := client.Build(ctx, "book")
	if err != nil {
		t.Fatalf("build must survive transient extraction failures: %v", err)
	}
	if summary.EntitiesCreated != 1 {
		t.Errorf("expected 1 entity after retries, got %+v", summary)
	}
	if aiClient.formatCalls != 3 {
		t.Errorf("expected 3 extraction attempts, got %d", aiClient.formatCalls)
	}
}

func TestBuildFailFastStopsWithoutAdvancing(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	progress := newFakeProgressStore()
	corpus := newFakeCorpusStore()
	seedCorpus(t, corpus, "book", "chapter one")

	aiClient := &fakeAIClient{formatFailures: 5}

	client := NewWikiClient(NewWikiClientParams{
		AIClient: aiClient,
		Graph:    graph,
		Progress: progress,
		Corpus:   corpus,
		FailFast: true,
	})

	_, err := client.Build(ctx, "book")
	var malformed *MalformedExtractionError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedExtractionError, got %v", err)
	}
	if malformed.StartChapter != 1 || malformed.EndChapter != 2 {
		t.Errorf("unexpected failed range: %+v", malformed)
	}
	if aiClient.formatCalls != 1 {
		t.Errorf("fail-fast must not retry, got %d attempts", aiClient.formatCalls)
	}

	saved, _ := progress.GetProgress(ctx, "book")
	if saved != 1 {
		t.Errorf("cursor must not advance past a failed chunk, got %d", saved)
	}
}

func TestBuildResumesFromSavedProgress(t *testing.T) {
	ctx := context.Background()
	graph := newFakeGraphStore()
	progress := newFakeProgressStore()
	corpus := newFakeCorpusStore()
	seedCorpus(t, corpus, "book", "chapter one", "chapter two")
	_ = progress.SaveProgress(ctx, "book", 2)

	aiClient := &fakeAIClient{
		extractions: []EntityExtraction{
			{Entities: []common.ExtractedEntity{
				{Name: "Late Arrival", Category: "character", Summary: "appears in chapter two"},
			}},
		},
	}

	client := NewWikiClient(NewWikiClientParams{
		AIClient: aiClient,
		Graph:    graph,
		Progress: progress,
		Corpus:   corpus,
	})

	summary, err := client.Build(ctx, "book")
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if summary.ChaptersProcessed != 1 {
		t.Errorf("expected only chapter two to be processed, got %+v", summary)
	}

	node, _ := graph.GetEntityNode(ctx, "book", "Late Arrival")
	if node == nil || node.Summary["c2"] == "" {
		t.Errorf("expected a c2 summary entry, got %v", node)
	}
}

func TestBuildCancelledContext(t *testing.T) {
	graph := newFakeGraphStore()
	progress := newFakeProgressStore()
	corpus := newFakeCorpusStore()
	seedCorpus(t, corpus, "book", "chapter one")

	client := NewWikiClient(NewWikiClientParams{
		AIClient: &fakeAIClient{},
		Graph:    graph,
		Progress: progress,
		Corpus:   corpus,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Build(ctx, "book")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBatchExtractBuffersAllChapters(t *testing.T) {
	ctx := context.Background()
	corpus := newFakeCorpusStore()
	seedCorpus(t, corpus, "book", "chapter one", " ", "chapter three")
	buffer := newFakeBuffer()

	aiClient := &fakeAIClient{
		extractions: []EntityExtraction{
			{Entities: []common.ExtractedEntity{
				{Name: "Kestrel", Category: "character", Summary: "a thief"},
			}},
			{Entities: []common.ExtractedEntity{
				{Name: "Bastion", Category: "location", Summary: "a city"},
				{Name: "The Crown", Category: "artifact", Summary: "a jewel"},
			}},
		},
	}

	client := NewWikiClient(NewWikiClientParams{
		AIClient: aiClient,
		Graph:    newFakeGraphStore(),
		Progress: newFakeProgressStore(),
		Corpus:   corpus,
		Buffer:   buffer,
	})

	summary, err := client.BatchExtract(ctx, "book", 2)
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if summary.ChaptersExtracted != 2 {
		t.Errorf("expected 2 chapters extracted, got %+v", summary)
	}
	if summary.ChaptersSkipped != 1 {
		t.Errorf("expected the blank chapter skipped, got %+v", summary)
	}
	if summary.EntitiesBuffered != 3 {
		t.Errorf("expected 3 entities buffered, got %+v", summary)
	}

	saved, err := buffer.GetEntities(ctx, "book")
	if err != nil {
		t.Fatalf("unexpected buffer error: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 buffered extractions, got %d", len(saved))
	}
	for _, extraction := range saved {
		if extraction.EndChapter != extraction.StartChapter+1 {
			t.Errorf("batch extraction must cover single chapters: %+v", extraction)
		}
	}
}

func TestBatchExtractRequiresBuffer(t *testing.T) {
	client := NewWikiClient(NewWikiClientParams{
		AIClient: &fakeAIClient{},
		Graph:    newFakeGraphStore(),
		Progress: newFakeProgressStore(),
		Corpus:   newFakeCorpusStore(),
	})

	if _, err := client.BatchExtract(context.Background(), "book", 2); err == nil {
		t.Fatal("expected an error without an entity buffer")
	}
}
