package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimelineItemModel_MalformedWeeksAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)

	row := TimelineItemModel{ClientID: "c1", Month: 1, Title: "Foundation", Status: "pending", WeeksJSON: "{broken"}
	month := row.ToDomain()
	assert.Empty(t, month.Weeks)

	entries := logs.FilterMessage("failed to parse JSON column").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "client.models", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "weeks", fields["column"])
	assert.Equal(t, "c1", fields["client_id"])
}

func TestTimelineItemModel_EmptyWeeksAreSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)

	row := TimelineItemModel{ClientID: "c1", Month: 2, WeeksJSON: "[]"}
	assert.Empty(t, row.ToDomain().Weeks)
	assert.Zero(t, logs.Len())
}
