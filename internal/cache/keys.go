package cache

import (
	"strconv"
	"strings"
)

const (
	GlobalKeyPrefix = "examhub"

	// StatsService namespaces the aggregate stats entries.
	StatsService = "stats"

	StatsKindSubject = "subject"
	StatsKindTopic   = "topic"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// StatsGenerationKey holds the counter bumped on every content mutation.
func StatsGenerationKey() string {
	return GlobalKeyPrefix + ":" + StatsService + ":generation"
}

// StatsKey addresses one stats entry within a generation.
func StatsKey(kind, id string, generation int64) string {
	return GenerateCacheKey(StatsService, kind, id, "g"+strconv.FormatInt(generation, 10))
}
