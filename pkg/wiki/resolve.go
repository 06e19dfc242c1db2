package wiki

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkgraph/backend/pkg/ai"
	"github.com/inkgraph/backend/pkg/common"
	"github.com/inkgraph/backend/pkg/logger"
)

// resolution records how one extracted entity landed in the graph: the final
// node name it resolved to and whether that node was newly created.
type resolution struct {
	Name    string
	Created bool
}

// resolveEntity applies one extracted entity to the graph under the given
// chapter-range key.
//
// An unknown name becomes a new node. A known name triggers merge
// disambiguation against the stored record: an empty model answer means the
// two records describe the same entity and the new summary entry is merged
// append-only; a non-empty answer is the distinct name under which the new
// entity is created instead.
func (c *WikiClient) resolveEntity(
	ctx context.Context,
	assembler *ContextAssembler,
	bookID string,
	entity common.ExtractedEntity,
	chunkKey string,
) (*resolution, error) {
	existing, err := c.graph.GetEntityNode(ctx, bookID, entity.Name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		node := common.EntityNode{
			Name:     entity.Name,
			Category: entity.Category,
			Summary:  map[string]string{chunkKey: entity.Summary},
		}
		if err := c.graph.AddEntityNode(ctx, bookID, node); err != nil {
			return nil, err
		}
		return &resolution{Name: entity.Name, Created: true}, nil
	}

	narrowContext, err := assembler.BuildContextFor(ctx, existing.Name)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(ai.MergeEntityPrompt, existing.Name, narrowContext, entity.Summary)
	answer, err := c.aiClient.GenerateCompletion(ctx, prompt)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)

	if answer == "" || answer == existing.Name {
		if answer == existing.Name {
			logger.Warn("[Wiki] Merge answer repeated the existing name, treating as merge",
				"book_id", bookID, "entity", existing.Name)
		}
		node := common.EntityNode{
			Name:     existing.Name,
			Category: entity.Category,
			Summary:  map[string]string{chunkKey: entity.Summary},
		}
		if err := c.graph.UpdateEntityNode(ctx, bookID, node); err != nil {
			return nil, err
		}
		return &resolution{Name: existing.Name, Created: false}, nil
	}

	node := common.EntityNode{
		Name:     answer,
		Category: entity.Category,
		Summary:  map[string]string{chunkKey: entity.Summary},
	}
	if err := c.graph.UpdateEntityNode(ctx, bookID, node); err != nil {
		return nil, err
	}
	logger.Info("[Wiki] Name collision resolved to a distinct entity",
		"book_id", bookID, "name", entity.Name, "renamed_to", answer)
	return &resolution{Name: answer, Created: true}, nil
}
