package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_LookupAndOrder(t *testing.T) {
	ids := IDs()
	require.Len(t, ids, 15)
	assert.Equal(t, DailyStreak3, ids[0])
	assert.Equal(t, HelpfulStudent, ids[len(ids)-1])

	def, ok := Lookup(AssignmentsCompleted3)
	require.True(t, ok)
	assert.Equal(t, 3, def.MaxProgress)
	assert.Equal(t, 100, def.RewardXP)
	assert.Equal(t, Bronze, def.RewardBadge)

	_, ok = Lookup("no_such_achievement")
	assert.False(t, ok)
}

func TestCatalog_Invariants(t *testing.T) {
	seen := map[ID]bool{}
	for _, def := range All() {
		assert.Greater(t, def.MaxProgress, 0, def.ID)
		assert.False(t, seen[def.ID], "duplicate id %s", def.ID)
		seen[def.ID] = true
		assert.Contains(t, []Badge{Bronze, Silver, Gold}, def.RewardBadge)
	}
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	all := All()
	all[0].MaxProgress = 999

	def, _ := Lookup(all[0].ID)
	assert.Equal(t, 3, def.MaxProgress)
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("fast_learner")
	assert.True(t, ok)
	assert.Equal(t, FastLearner, id)

	_, ok = ParseID("FAST_LEARNER")
	assert.False(t, ok)
}

func TestPosition(t *testing.T) {
	assert.Equal(t, 0, Position(DailyStreak3))
	assert.Less(t, Position(FirstPerfect), Position(EarlyBird))
	assert.Equal(t, len(IDs()), Position("unknown"))
}
