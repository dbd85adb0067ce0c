// Package storage is the durable side of chat: an append-only badger store
// fed off the fan-out critical path. The engine's in-memory log stays the
// source of truth for late joiners.
package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

const queueDepth = 256

type ChatStore struct {
	db    *badger.DB
	queue chan domain.ChatMessage
	wg    sync.WaitGroup

	once sync.Once
}

// Open creates or reopens the store. An empty path means an in-memory
// database, which tests use.
func Open(path string) (*ChatStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open chat store: %w", err)
	}
	s := &ChatStore{db: db, queue: make(chan domain.ChatMessage, queueDepth)}
	s.wg.Add(1)
	go s.writer()
	return s, nil
}

// Store enqueues a message for persistence without blocking the caller.
// When the queue is full the message is dropped; durability here is
// best-effort by design.
func (s *ChatStore) Store(msg domain.ChatMessage) {
	select {
	case s.queue <- msg:
	default:
		log.Warn().Str("module", "storage.chat").Str("room", string(msg.RoomID)).Msg("persist queue full, message dropped")
	}
}

func (s *ChatStore) writer() {
	defer s.wg.Done()
	for msg := range s.queue {
		if err := s.write(msg); err != nil {
			log.Error().Err(err).Str("module", "storage.chat").Str("id", msg.ID).Msg("persist chat message")
		}
	}
}

func (s *ChatStore) write(msg domain.ChatMessage) error {
	val, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	key := chatKey(msg)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// chatKey orders messages per room by timestamp, then id for uniqueness.
func chatKey(msg domain.ChatMessage) []byte {
	return fmt.Appendf(nil, "chat/%s/%020d/%s", msg.RoomID, msg.Timestamp.UnixNano(), msg.ID)
}

// Recent returns up to limit messages for a room, newest first.
func (s *ChatStore) Recent(roomID domain.RoomID, limit int) ([]domain.ChatMessage, error) {
	prefix := fmt.Appendf(nil, "chat/%s/", roomID)
	var out []domain.ChatMessage
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		// Reverse iteration needs a seek key past the prefix range.
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg domain.ChatMessage
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				out = append(out, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// Close drains the queue and closes the database.
func (s *ChatStore) Close() error {
	var err error
	s.once.Do(func() {
		close(s.queue)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
