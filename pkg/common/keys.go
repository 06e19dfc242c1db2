package common

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkRangeKey builds the summary-map key for a consumed chapter range.
// A single chapter yields "c3"; a span of chapters yields "c3-5". The end
// bound is exclusive, matching the reader's cursor semantics.
func ChunkRangeKey(start, end int) string {
	if end-start <= 1 {
		return fmt.Sprintf("c%d", start)
	}
	return fmt.Sprintf("c%d-%d", start, end-1)
}

// ChunkRangeStart parses the numeric start chapter out of a summary-map key.
// Keys that do not follow the "cN" / "cN-M" shape sort first (start 0).
func ChunkRangeStart(key string) int {
	key = strings.TrimPrefix(key, "c")
	if idx := strings.IndexByte(key, '-'); idx >= 0 {
		key = key[:idx]
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0
	}
	return n
}
