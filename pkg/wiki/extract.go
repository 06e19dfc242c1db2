package wiki

import (
	"context"
	"fmt"

	"github.com/inkgraph/backend/internal/util"
	"github.com/inkgraph/backend/pkg/ai"
	"github.com/inkgraph/backend/pkg/common"
)

// EntityExtraction is the schema-constrained payload the generation service
// returns for one chunk of chapters.
type EntityExtraction struct {
	Entities []common.ExtractedEntity `json:"entities"`
}

// extractEntities asks the generation service for the entities of one chunk,
// grounded on the assembled graph context. The call is retried up to
// maxRetries times; a payload that still cannot be parsed afterwards
// surfaces as a MalformedExtractionError.
func (c *WikiClient) extractEntities(
	ctx context.Context,
	graphContext string,
	chunk string,
	startChapter int,
	endChapter int,
) ([]common.ExtractedEntity, error) {
	prompt := fmt.Sprintf(ai.ExtractEntitiesPrompt, graphContext, chunk)

	extraction, err := util.RetryWithContext(ctx, c.maxRetries, func(ctx context.Context) (EntityExtraction, error) {
		var out EntityExtraction
		err := c.aiClient.GenerateCompletionWithFormat(
			ctx,
			"entity_extraction",
			"Entities, categories, summaries and relationships found in a chapter of fiction",
			prompt,
			&out,
		)
		return out, err
	})
	if err != nil {
		return nil, &MalformedExtractionError{
			StartChapter: startChapter,
			EndChapter:   endChapter,
			Err:          err,
		}
	}

	entities := make([]common.ExtractedEntity, 0, len(extraction.Entities))
	for _, entity := range extraction.Entities {
		if entity.Name == "" {
			continue
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
