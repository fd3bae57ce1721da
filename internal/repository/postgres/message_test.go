package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspace/mindspace-backend/internal/database/dbtest"
	"github.com/mindspace/mindspace-backend/internal/models"
	"github.com/mindspace/mindspace-backend/internal/repository"
)

func TestMessageRepository_ListBySession(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	clock := repository.NewClock()
	sessions := NewSessionRepository(db, clock)
	messages := NewMessageRepository(db, clock)

	session := &models.Session{PsychologistType: "anxiety", Language: "english", IsActive: true}
	require.NoError(t, sessions.Create(ctx, session))

	t.Run("empty session", func(t *testing.T) {
		history, err := messages.ListBySession(ctx, session.ID)
		require.NoError(t, err)
		assert.NotNil(t, history)
		assert.Empty(t, history)
	})

	t.Run("ascending timestamp order", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			msg := &models.ChatMessage{
				SessionID:        session.ID,
				Message:          fmt.Sprintf("message %d", i),
				IsUser:           i%2 == 0,
				PsychologistType: "anxiety",
			}
			require.NoError(t, messages.Create(ctx, msg))
			assert.NotEmpty(t, msg.ID)
		}

		history, err := messages.ListBySession(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, history, 5)
		for i, msg := range history {
			assert.Equal(t, fmt.Sprintf("message %d", i), msg.Message)
			assert.Equal(t, i%2 == 0, msg.IsUser)
			assert.Equal(t, session.ID, msg.SessionID)
			if i > 0 {
				assert.True(t, msg.Timestamp.After(history[i-1].Timestamp))
			}
		}
	})

	t.Run("other sessions are excluded", func(t *testing.T) {
		other := &models.Session{PsychologistType: "general", Language: "english", IsActive: true}
		require.NoError(t, sessions.Create(ctx, other))

		history, err := messages.ListBySession(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}

func TestMessageRepository_RejectsUnknownSession(t *testing.T) {
	messages := NewMessageRepository(dbtest.Open(t), repository.NewClock())

	err := messages.Create(context.Background(), &models.ChatMessage{
		SessionID:        "missing",
		Message:          "hello",
		IsUser:           true,
		PsychologistType: "general",
	})
	assert.Error(t, err)
}
