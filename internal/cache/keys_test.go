package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name       string
		service    string
		objectType string
		identifier string
		params     []string
		want       string
	}{
		{"no params", "stats", "subject", "s1", nil, "examhub:stats:subject:s1"},
		{"one param", "stats", "topic", "t1", []string{"g3"}, "examhub:stats:topic:t1:g3"},
		{"several params", "svc", "obj", "id", []string{"a", "b"}, "examhub:svc:obj:id:a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateCacheKey(tt.service, tt.objectType, tt.identifier, tt.params...))
		})
	}
}

func TestStatsKeys(t *testing.T) {
	assert.Equal(t, "examhub:stats:generation", StatsGenerationKey())
	assert.Equal(t, "examhub:stats:subject:s1:g0", StatsKey(StatsKindSubject, "s1", 0))
	assert.NotEqual(t, StatsKey(StatsKindTopic, "t1", 1), StatsKey(StatsKindTopic, "t1", 2))
}
