package wiki

import "strings"

var edgeTypeReplacer = strings.NewReplacer(
	",", "_",
	" ", "_",
	";", "_",
	"/", "_",
	"&", "_",
	"\\", "_",
	"，", "_",
)

// SanitizeEdgeType normalizes a model-produced relation label into a stable
// edge type: separators and whitespace collapse to underscores.
func SanitizeEdgeType(label string) string {
	return edgeTypeReplacer.Replace(strings.TrimSpace(label))
}
