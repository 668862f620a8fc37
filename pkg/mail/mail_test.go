package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMessageHasRecipients(t *testing.T) {
	assert.False(t, Message{}.HasRecipients())
	assert.True(t, Message{To: []Recipient{{Address: "a@example.com"}}}.HasRecipients())
}

func TestConsoleSenderLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewConsoleSender(zap.New(core))

	err := sender.Send(context.Background(), Message{
		To:       []Recipient{{Name: "Maria", Address: "maria@example.com"}},
		Subject:  "Class summary",
		TextBody: "Great progress today.",
	})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["to"], "maria@example.com")
	assert.Equal(t, "Class summary", entries[0].ContextMap()["subject"])
}
