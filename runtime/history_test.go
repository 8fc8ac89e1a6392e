package runtime

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newMessage(room, text string, at time.Time) domain.Message {
	return domain.Message{ID: uuid.New(), Username: "alice", Text: text, Room: room, CreatedAt: at}
}

func texts(messages []domain.Message) []string {
	return lo.Map(messages, func(m domain.Message, _ int) string { return m.Text })
}

func TestMemoryHistory_Unused_Room_Is_Empty(t *testing.T) {
	req := require.New(t)
	history := NewMemoryHistory(0)

	messages, err := history.Get(context.Background(), "General")

	req.NoError(err)
	req.NotNil(messages)
	req.Empty(messages)
}

func TestMemoryHistory_Append_Keeps_Order_Per_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	history := NewMemoryHistory(0)
	at := time.Now().UTC()

	req.NoError(history.Append(ctx, newMessage("General", "one", at)))
	req.NoError(history.Append(ctx, newMessage("Sports", "goal", at)))
	req.NoError(history.Append(ctx, newMessage("General", "two", at.Add(time.Second))))

	general, err := history.Get(ctx, "General")
	req.NoError(err)
	req.Equal([]string{"one", "two"}, texts(general))

	sports, err := history.Get(ctx, "Sports")
	req.NoError(err)
	req.Equal([]string{"goal"}, texts(sports))
}

func TestMemoryHistory_Limit_Evicts_Oldest(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	history := NewMemoryHistory(3)
	at := time.Now().UTC()

	for i := 0; i < 10; i++ {
		req.NoError(history.Append(ctx, newMessage("General", fmt.Sprintf("m%d", i), at)))
	}

	messages, err := history.Get(ctx, "General")
	req.NoError(err)
	req.Equal([]string{"m7", "m8", "m9"}, texts(messages))
}

func TestMemoryHistory_Get_Returns_A_Copy(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	history := NewMemoryHistory(0)
	req.NoError(history.Append(ctx, newMessage("General", "original", time.Now())))

	messages, err := history.Get(ctx, "General")
	req.NoError(err)
	messages[0].Text = "mutated"

	again, err := history.Get(ctx, "General")
	req.NoError(err)
	req.Equal("original", again[0].Text)
}
