package storage

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openHistory(t *testing.T, limit int) *BadgerHistory {
	t.Helper()
	history, err := OpenBadgerHistory(logs.GetLoggerFromLevel(slog.LevelDebug), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })
	return history
}

func newMessage(room, username, text string, at time.Time) domain.Message {
	return domain.Message{ID: uuid.New(), Username: username, Text: text, Room: room, CreatedAt: at}
}

func Test_Record_And_Get_Messages_In_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	history := openHistory(t, 0)
	at := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)

	// Given three messages recorded in a room
	messages := []domain.Message{
		newMessage("General", "alice", "first", at),
		newMessage("General", "bob", "second", at.Add(time.Minute)),
		newMessage("General", "clara", "third", at.Add(2*time.Minute)),
	}
	messages[1].Lang = "en"
	for _, m := range messages {
		req.NoError(history.Append(ctx, m))
	}

	// When fetching the room
	fetched, err := history.Get(ctx, "General")

	// Then messages come back unchanged, oldest first
	req.NoError(err)
	req.Equal(messages, fetched)
}

func Test_Unused_Room_Is_Empty_Not_Nil(t *testing.T) {
	req := require.New(t)
	history := openHistory(t, 0)

	fetched, err := history.Get(context.Background(), "Nobody")

	req.NoError(err)
	req.NotNil(fetched)
	req.Empty(fetched)
}

func Test_Limit_Evicts_Oldest_Of_The_Room_Only(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	history := openHistory(t, 2)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	req.NoError(history.Append(ctx, newMessage("Other", "zed", "kept", at)))
	for i := 0; i < 5; i++ {
		req.NoError(history.Append(ctx, newMessage("General", "alice", fmt.Sprintf("m%d", i), at.Add(time.Duration(i)*time.Second))))
	}

	general, err := history.Get(ctx, "General")
	req.NoError(err)
	req.Len(general, 2)
	req.Equal("m3", general[0].Text)
	req.Equal("m4", general[1].Text)

	other, err := history.Get(ctx, "Other")
	req.NoError(err)
	req.Len(other, 1)
}

func Test_Rooms_Sharing_A_Prefix_Do_Not_Mix(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	history := openHistory(t, 0)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	req.NoError(history.Append(ctx, newMessage("a", "alice", "in a", at)))
	req.NoError(history.Append(ctx, newMessage("a:b", "bob", "in a:b", at)))
	req.NoError(history.Append(ctx, newMessage("ab", "clara", "in ab", at)))

	fetched, err := history.Get(ctx, "a")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("in a", fetched[0].Text)
}

func Test_Canceled_Context_Is_Rejected(t *testing.T) {
	req := require.New(t)
	history := openHistory(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.ErrorIs(history.Append(ctx, newMessage("General", "alice", "late", time.Now().UTC())), context.Canceled)
	_, err := history.Get(ctx, "General")
	req.ErrorIs(err, context.Canceled)
}
