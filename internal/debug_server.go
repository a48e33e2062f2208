package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"game-lab/domain"
	"game-lab/repositories"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

const defaultPrefix = "log:"

type InspectRow struct {
	Key    string
	Kind   string
	Time   string
	RoomID string
	Seq    string
	User   string
	Detail string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() any

// Evictor drops a live room so that its next access reloads it from the log.
// It reports whether the room was live.
type Evictor func(roomID domain.RoomID) bool

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  string
}

// NewDebugServer serves the badger key inspector on /inspect and the runtime
// counters on /debug/stats. db may be nil when the log is not stored in badger.
// With an evictor, POST /rooms/{roomId}/evict lets an operator reload a room,
// the way back for a room left unusable by a failed append.
func NewDebugServer(db *badger.DB, port int, mapper RowMapper, statsProvider StatsProvider, evict Evictor) *http.Server {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DefaultMapper
	}

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultPrefix
		}
		data := PageData{Prefix: prefix}
		if statsProvider != nil {
			if raw, err := json.MarshalIndent(statsProvider(), "", "  "); err == nil {
				data.Stats = string(raw)
			}
		}

		if db != nil {
			_ = db.View(func(txn *badger.Txn) error {
				it := txn.NewIterator(badger.DefaultIteratorOptions)
				defer it.Close()
				for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
					item := it.Item()
					_ = item.Value(func(val []byte) error {
						data.Items = append(data.Items, mapper(string(item.Key()), val))
						return nil
					})
				}
				return nil
			})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var stats any = map[string]any{}
		if statsProvider != nil {
			stats = statsProvider()
		}
		_ = json.NewEncoder(w).Encode(stats)
	})

	if evict != nil {
		mux.HandleFunc("POST /rooms/{roomId}/evict", func(w http.ResponseWriter, r *http.Request) {
			roomID := domain.RoomID(r.PathValue("roomId"))
			if err := roomID.Validate(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			evicted := evict(roomID)
			w.Header().Set("Content-Type", "application/json")
			if !evicted {
				w.WriteHeader(http.StatusNotFound)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"roomId": roomID, "evicted": evicted})
		})
	}

	return &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// DefaultMapper only understands the key layout log:{room}:{seq}:{unix ms}.
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:    key,
		Kind:   "RAW",
		Time:   "--:--:--",
		RoomID: "--------",
		Seq:    "-",
		User:   "-",
		Detail: "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	if len(parts) == 4 {
		row.RoomID = parts[1]
		if len(row.RoomID) > 8 {
			row.RoomID = row.RoomID[:8]
		}
		if seq, err := strconv.ParseUint(parts[2], 10, 64); err == nil {
			row.Seq = strconv.FormatUint(seq, 10)
		}
		if ms, err := strconv.ParseInt(parts[3], 10, 64); err == nil {
			row.Time = time.UnixMilli(ms).UTC().Format("15:04:05.000")
		}
	}
	return row
}

// LogRowMapper decodes the record stored under a log key.
func LogRowMapper(key string, val []byte) InspectRow {
	row := DefaultMapper(key, val)
	record, err := repositories.DecodeRecord(val)
	if err != nil {
		row.Detail = "undecodable: " + err.Error()
		return row
	}
	switch r := record.(type) {
	case domain.CreationRecord:
		row.Kind = "CREATE"
		row.User = r.User.ID
		row.Detail = fmt.Sprintf("seed=%d args=%s", r.Seed, orNone(r.Args))
	case domain.CommandRecord:
		row.Kind = "COMMAND"
		row.User = r.User.ID
		row.Detail = fmt.Sprintf("%s %s", r.Method, orNone(r.Args))
	}
	return row
}

func orNone(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "{}"
	}
	return string(raw)
}
