package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"game-lab/contract"
	"game-lab/domain"
	"game-lab/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// log_inspect dumps the event log of one room, or every room of a badger store.
func main() {
	backend := flag.String("backend", "badger", "Log backend: badger or sqlite")
	dbPath := flag.String("db", "./data/badger", "Path to the badger directory or sqlite file")
	room := flag.String("room", "", "Room id (required for sqlite)")
	flag.Parse()

	eventLog, rooms, closeFn, err := open(*backend, *dbPath, *room)
	if err != nil {
		log.Fatal("Error while opening the log: ", err)
	}
	defer closeFn()

	for _, roomID := range rooms {
		entries, err := eventLog.Load(context.Background(), roomID)
		if err != nil {
			log.Fatal(err)
		}
		color.Cyan.Printf("\nRoom %s ", roomID)
		color.Gray.Printf("(%d entries)\n", len(entries))
		render(entries)
	}
}

func open(backend, path, room string) (contract.EventLog, []domain.RoomID, func(), error) {
	switch backend {
	case "badger":
		db, err := badger.Open(badger.DefaultOptions(path).
			WithReadOnly(true).
			WithLogger(nil).
			WithBypassLockGuard(true))
		if err != nil {
			return nil, nil, nil, err
		}
		rooms := []domain.RoomID{domain.RoomID(room)}
		if room == "" {
			if rooms, err = scanRooms(db); err != nil {
				_ = db.Close()
				return nil, nil, nil, err
			}
		}
		return repositories.NewBadgerLog(db, logs.GetLoggerFromLevel(slog.LevelError)), rooms, func() { _ = db.Close() }, nil
	case "sqlite":
		if room == "" {
			return nil, nil, nil, fmt.Errorf("-room is required with sqlite")
		}
		sqliteLog, err := repositories.OpenSQLiteLog(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqliteLog, []domain.RoomID{domain.RoomID(room)}, func() { _ = sqliteLog.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// scanRooms lists room ids from keys shaped log:{room}:{seq}:{ms}. Only seq 0 is kept.
func scanRooms(db *badger.DB) ([]domain.RoomID, error) {
	var rooms []domain.RoomID
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("log:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			parts := strings.Split(string(it.Item().Key()), ":")
			if len(parts) != 4 {
				continue
			}
			if seq, err := strconv.ParseUint(parts[2], 10, 64); err == nil && seq == 0 {
				rooms = append(rooms, domain.RoomID(parts[1]))
			}
		}
		return nil
	})
	return rooms, err
}

func render(entries []domain.LogEntry) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Seq", "Time", "Kind", "User", "Method", "Args"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, entry := range entries {
		row := []string{strconv.FormatUint(entry.Seq, 10), entry.Time.Format("2006-01-02 15:04:05.000"), "?", "", "", ""}
		record, err := repositories.DecodeRecord(entry.Record)
		if err != nil {
			row[2] = color.Red.Sprint("UNDECODABLE")
			row[5] = err.Error()
			table.Append(row)
			continue
		}
		switch r := record.(type) {
		case domain.CreationRecord:
			row[2] = color.Green.Sprint("CREATE")
			row[3] = fmt.Sprintf("%s (%s)", r.User.ID, r.User.Name)
			row[4] = fmt.Sprintf("seed=%d", r.Seed)
			row[5] = string(r.Args)
		case domain.CommandRecord:
			row[2] = color.Yellow.Sprint("COMMAND")
			row[3] = fmt.Sprintf("%s (%s)", r.User.ID, r.User.Name)
			row[4] = r.Method
			row[5] = string(r.Args)
		}
		table.Append(row)
	}
	table.Render()
}
