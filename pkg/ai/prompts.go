package ai

const ExtractEntitiesPrompt = `
# Task Context
You are tasked with extracting **structured entity information** from a chapter of a work of fiction. You maintain an evolving wiki of the book: characters, locations, artifacts, organizations, and other narrative concepts.

# Background Data
Known entities and what the wiki already records about them (may be empty at the start of a book):

%s

# Detailed Task Description & Rules
- Extract every entity that appears or is meaningfully referenced in the chapter text below.
- For each entity provide:
  * **name:** The name used for the entity in the text. Reuse the exact known name from the background data when the entity is already known.
  * **category:** A short free-text category such as "character", "location", "artifact", "organization", "event".
  * **summary:** What THIS chapter reveals about the entity. Do not repeat information already recorded in the background data; summarize only new developments.
  * **relationships:** Directed relations from this entity to other extracted or known entities, each with a target name and a short relation label (e.g., "brother_of", "lives_in", "owns").
- Prefer the category vocabulary listed in the background data when one fits; introduce a new category only when none fits.
- Relation targets must be entity names, never free prose.
- Do not invent entities or facts that are not supported by the chapter text.

# Immediate Task Description or Request
Chapter text:

%s

# Output Formatting
Return JSON with this structure:
{
  "entities": [
    {
      "name": string,
      "category": string,
      "summary": string,
      "relationships": [
        {"target": string, "relation": string}
      ]
    }
  ]
}
Output must be valid JSON only (no commentary, no extra text).
`

const MergeEntityPrompt = `
# Task Context
You maintain a wiki of entities in a work of fiction. A newly extracted entity has the same name as an entity already recorded in the wiki. Decide whether they are the same entity or two distinct entities that happen to share a name.

# Background Data
Entity name: %s

What the wiki already records about this name and its narrative neighborhood:

%s

# Detailed Task Description & Rules
- Newly extracted information about an entity using this name:

%s

- If the new information describes the SAME entity as the existing record, answer with an empty string.
- If the new information describes a DIFFERENT entity that merely shares the name, answer with a new, distinct, unambiguous name for the new entity (e.g., "John Smith (the blacksmith)").
- Never return the existing name itself.

# Output Formatting
Respond with the new name only, or with an empty response if both records describe the same entity. No commentary.
`
