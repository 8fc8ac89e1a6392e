package storage

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ contract.HistoryStore = (*BadgerHistory)(nil)

// BadgerHistory keeps room history in an in-memory Badger instance.
// Keys are msg:{hex(room)}:{seq} so that a prefix scan yields chronological order.
type BadgerHistory struct {
	db    *badger.DB
	log   *slog.Logger
	limit int

	mu    sync.Mutex
	seq   map[string]uint64
	count map[string]int
}

// OpenBadgerHistory opens an in-memory Badger database. Nothing touches the disk.
// A limit of 0 keeps every message.
func OpenBadgerHistory(log *slog.Logger, limit int) (*BadgerHistory, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return &BadgerHistory{
		db:    db,
		log:   log,
		limit: limit,
		seq:   make(map[string]uint64),
		count: make(map[string]int),
	}, nil
}

func (h *BadgerHistory) Close() error {
	return h.db.Close()
}

// Append stores the message after the last one of its room, evicting the
// oldest messages when the room goes past the limit.
func (h *BadgerHistory) Append(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeMessage(message)
	if err != nil {
		return fmt.Errorf("failed to encode message %s: %w", message.ID, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	seq := h.seq[message.Room] + 1
	count := h.count[message.Room] + 1
	prefix := roomPrefix(message.Room)

	err = h.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(prefix, seq), data); err != nil {
			return err
		}
		if h.limit <= 0 || count <= h.limit {
			return nil
		}
		evicted, err := oldestKeys(txn, prefix, count-h.limit)
		if err != nil {
			return err
		}
		for _, key := range evicted {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		count -= len(evicted)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append message to %s: %w", message.Room, err)
	}

	h.seq[message.Room] = seq
	h.count[message.Room] = count
	return nil
}

// Get returns the messages of room, oldest first.
func (h *BadgerHistory) Get(ctx context.Context, room string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	messages := []domain.Message{}
	prefix := roomPrefix(room)

	err := h.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				message, err := decodeMessage(v)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during history fetch of %s: %w", room, err)
	}
	return messages, nil
}

func oldestKeys(txn *badger.Txn, prefix []byte, n int) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	keys := make([][]byte, 0, n)
	for it.Seek(prefix); it.ValidForPrefix(prefix) && len(keys) < n; it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

func roomPrefix(room string) []byte {
	return []byte("msg:" + hex.EncodeToString([]byte(room)) + ":")
}

func messageKey(prefix []byte, seq uint64) []byte {
	return append(append([]byte{}, prefix...), fmt.Sprintf("%019d", seq)...)
}

func encodeMessage(m domain.Message) ([]byte, error) {
	record, err := structpb.NewStruct(map[string]any{
		"id":         m.ID.String(),
		"username":   m.Username,
		"text":       m.Text,
		"room":       m.Room,
		"lang":       m.Lang,
		"created_at": m.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(record)
}

func decodeMessage(data []byte) (domain.Message, error) {
	var record structpb.Struct
	if err := proto.Unmarshal(data, &record); err != nil {
		return domain.Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	fields := record.GetFields()
	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return domain.Message{}, fmt.Errorf("invalid message id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"].GetStringValue())
	if err != nil {
		return domain.Message{}, fmt.Errorf("invalid message timestamp: %w", err)
	}
	return domain.Message{
		ID:        id,
		Username:  fields["username"].GetStringValue(),
		Text:      fields["text"].GetStringValue(),
		Room:      fields["room"].GetStringValue(),
		Lang:      fields["lang"].GetStringValue(),
		CreatedAt: createdAt,
	}, nil
}
