package ai

import (
	"fmt"
	"testing"

	"sherpa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exchanges(n int) []models.AIExchange {
	out := make([]models.AIExchange, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.AIExchange{
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
		})
	}
	return out
}

func TestTrimHistoryKeepsMostRecentWindow(t *testing.T) {
	history := exchanges(historyWindow + 3)

	trimmed := trimHistory(history)
	require.Len(t, trimmed, historyWindow)
	assert.Equal(t, "q3", trimmed[0].Question)
	assert.Equal(t, fmt.Sprintf("q%d", historyWindow+2), trimmed[len(trimmed)-1].Question)
}

func TestTrimHistoryLeavesCallerSliceUntouched(t *testing.T) {
	history := exchanges(historyWindow + 3)

	trimmed := trimHistory(history)
	require.Len(t, history, historyWindow+3, "caller history must not shrink")
	assert.Equal(t, "q0", history[0].Question)

	// The trimmed copy must not share backing storage with the input.
	trimmed[0].Question = "overwritten"
	assert.Equal(t, "q3", history[3].Question)
}

func TestTrimHistoryShortInputPassesThrough(t *testing.T) {
	history := exchanges(historyWindow - 1)
	assert.Equal(t, history, trimHistory(history))
	assert.Empty(t, trimHistory(nil))
}
