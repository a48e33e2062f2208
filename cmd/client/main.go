package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"game-lab/client"
	"game-lab/domain"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"GAME_SERVER_URL,default=http://localhost:3000"`
	RoomID    string `env:"GAME_ROOM_ID"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run logs in anonymously, joins or creates a room, then sends one command per
// stdin line ("method {json args}") and prints every state it receives.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(config.ServerURL)
	user, err := c.LoginAnonymous(ctx)
	if err != nil {
		return exitRuntime, fmt.Errorf("login failed: %w", err)
	}
	log.Info("Logged in", "user_id", user.ID, "name", user.Name)

	roomID := domain.RoomID(config.RoomID)
	if roomID == "" {
		if roomID, err = c.CreateRoom(ctx, nil); err != nil {
			return exitRuntime, fmt.Errorf("room creation failed: %w", err)
		}
		log.Info("Room created", "room_id", roomID)
	}
	if err := c.Connect(ctx, roomID); err != nil {
		return exitRuntime, fmt.Errorf("connection failed: %w", err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = c.Close()
	}()
	color.Green.Printf(">>> Connected to room %s as %s (Ctrl+C to quit)\n", roomID, user.Name)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case state := <-c.States():
				color.Cyan.Println(string(state))
			}
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case <-c.Done():
			return exitRuntime, fmt.Errorf("connection lost")
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			method, rawArgs, _ := strings.Cut(strings.TrimSpace(line), " ")
			if method == "" {
				continue
			}
			var args any
			if rawArgs != "" {
				args = json.RawMessage(rawArgs)
			}
			reason, err := c.Send(ctx, method, args)
			switch {
			case err != nil:
				color.Red.Printf("%s failed: %v\n", method, err)
			case reason != "":
				color.Yellow.Printf("%s rejected: %s\n", method, reason)
			default:
				color.Green.Printf("%s ok\n", method)
			}
		}
	}
}
