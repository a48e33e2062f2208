package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"game-lab/contract"
	"game-lab/domain"

	"github.com/dgraph-io/badger/v4"
)

const logPrefix = "log"

// BadgerLog stores every room log under "log:{room_id}:{seq_padded}:{unix_ms_padded}".
// The 19-digit zero padding keeps lexicographical order equal to append order,
// so a prefix scan returns entries in sequence.
type BadgerLog struct {
	db  *badger.DB
	log *slog.Logger
}

var _ contract.EventLog = (*BadgerLog)(nil)

func NewBadgerLog(db *badger.DB, log *slog.Logger) *BadgerLog {
	return &BadgerLog{db: db, log: log}
}

func roomPrefix(roomID domain.RoomID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", logPrefix, roomID))
}

// Append computes the next sequence number and writes the entry in one transaction.
func (b *BadgerLog) Append(ctx context.Context, roomID domain.RoomID, at time.Time, record []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := roomID.Validate(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		next, err := nextSeq(txn, roomID)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s%019d:%019d", roomPrefix(roomID), next, at.UnixMilli())
		return txn.Set([]byte(key), record)
	})
}

func nextSeq(txn *badger.Txn, roomID domain.RoomID) (uint64, error) {
	prefix := roomPrefix(roomID)
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	it.Seek(append(append([]byte{}, prefix...), 0xff))
	if !it.ValidForPrefix(prefix) {
		return 0, nil
	}
	seq, _, err := parseLogKey(it.Item().Key(), len(prefix))
	if err != nil {
		return 0, err
	}
	return seq + 1, nil
}

// Load scans the room prefix in order. A room that was never created has no keys.
func (b *BadgerLog) Load(ctx context.Context, roomID domain.RoomID) ([]domain.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := roomID.Validate(); err != nil {
		return nil, err
	}
	var entries []domain.LogEntry
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(roomID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			seq, at, err := parseLogKey(item.Key(), len(prefix))
			if err != nil {
				return err
			}
			record, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			entries = append(entries, domain.LogEntry{RoomID: roomID, Seq: seq, Time: at, Record: record})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Debug("Room log loaded", "room_id", roomID, "entries", len(entries))
	return entries, nil
}

func parseLogKey(key []byte, prefixLen int) (uint64, time.Time, error) {
	parts := strings.Split(string(key[prefixLen:]), ":")
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("malformed log key %q", key)
	}
	seq, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("malformed sequence in %q: %w", key, err)
	}
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("malformed time in %q: %w", key, err)
	}
	return seq, time.UnixMilli(ms).UTC(), nil
}
