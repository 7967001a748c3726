package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"blackjackd/pkg/client"
	"blackjackd/pkg/server"
)

// Common flags
var (
	serverAddr = flag.String("server", client.DefaultServerAddr, "Blackjack server websocket address")
	dataDir    = flag.String("datadir", "", "Directory holding the persisted session id")
	sessionID  = flag.String("sessionid", "", "Explicit session id")
	timeout    = flag.Duration("timeout", 30*time.Second, "How long to wait for the table to settle")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [global flags] <command> [args]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  session                          Show the session id in use")
		fmt.Fprintln(os.Stderr, "  state                            Print current game state (JSON)")
		fmt.Fprintln(os.Stderr, "  start [--difficulty D] [--bet N] Deal a round; prints the settled state")
		fmt.Fprintln(os.Stderr, "  hit                              Take a card; prints the settled state")
		fmt.Fprintln(os.Stderr, "  stand                            Stand; prints the settled state")
		fmt.Fprintln(os.Stderr, "  reset                            Reset the game to a fresh bankroll")
		fmt.Fprintln(os.Stderr, "  watch                            Stream state updates (JSON)")
		fmt.Fprintln(os.Stderr, "  play [--difficulty D] [--bet N] [--rounds N]  Autoplay rounds dealer-style")
		fmt.Fprintln(os.Stderr, "\nGlobal flags:")
		flag.PrintDefaults()
	}

	// Suppress default flag errors to avoid noisy usage on subcommands
	flag.CommandLine.SetOutput(io.Discard)
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cmd := flag.Arg(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cli, err := client.NewClient(ctx, &client.Config{
		ServerAddr: *serverAddr,
		DataDir:    *dataDir,
		SessionID:  *sessionID,
	})
	if err != nil {
		fatalErr(err)
	}
	defer cli.Close()

	// One-shot commands give up once the table fails to settle in time.
	opCtx, opCancel := context.WithTimeout(ctx, *timeout)
	defer opCancel()

	switch cmd {
	case "session":
		// The id may be assigned by the server; wait for the greeting.
		if _, err := firstFrame(opCtx, cli); err != nil {
			fatalErr(err)
		}
		fmt.Println(cli.SessionID())

	case "state":
		if err := handleState(opCtx, cli); err != nil {
			fatalErr(err)
		}

	case "start":
		if err := handleStart(opCtx, cli, flag.Args()[1:]); err != nil {
			fatalErr(err)
		}

	case "hit":
		if err := handleAction(opCtx, cli, "hit"); err != nil {
			fatalErr(err)
		}

	case "stand":
		if err := handleAction(opCtx, cli, "stand"); err != nil {
			fatalErr(err)
		}

	case "reset":
		if err := handleReset(opCtx, cli); err != nil {
			fatalErr(err)
		}

	case "watch":
		if err := handleWatch(ctx, cli); err != nil {
			fatalErr(err)
		}

	case "play":
		if err := handlePlay(ctx, cli, flag.Args()[1:]); err != nil {
			fatalErr(err)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func fatalErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// firstFrame waits for the server's greeting after connect: either the
// current state or the awaiting-start notice for a fresh session.
func firstFrame(ctx context.Context, cli *client.Client) (interface{}, error) {
	for {
		select {
		case msg := <-cli.UpdatesCh:
			switch m := msg.(type) {
			case client.GameStateMsg:
				return (*server.GameStateUpdate)(m), nil
			case client.AwaitingStartMsg:
				return m, nil
			case client.ServerErrorMsg:
				return nil, errors.New(m.Message)
			}
		case err := <-cli.ErrorsCh:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// waitSettled drains updates until the table needs a decision or the round
// is over, then returns that state.
func waitSettled(ctx context.Context, cli *client.Client) (*server.GameStateUpdate, error) {
	for {
		select {
		case msg := <-cli.UpdatesCh:
			switch m := msg.(type) {
			case client.GameStateMsg:
				state := (*server.GameStateUpdate)(m)
				if settled(state) {
					return state, nil
				}
			case client.ServerErrorMsg:
				return nil, errors.New(m.Message)
			case client.GameOverMsg:
				// The final state frame lands alongside this notice.
			}
		case err := <-cli.ErrorsCh:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func settled(u *server.GameStateUpdate) bool {
	if u.CanHitStand || u.IsGameOver {
		return true
	}
	switch u.Phase {
	case "waiting_for_bet", "round_end", "game_over":
		return true
	}
	return false
}

func handleState(ctx context.Context, cli *client.Client) error {
	frame, err := firstFrame(ctx, cli)
	if err != nil {
		return err
	}
	return printJSON(frame)
}

func handleStart(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	difficulty := fs.String("difficulty", "medium", "AI difficulty: easy, medium, hard")
	bet := fs.Int64("bet", 100, "Bet amount")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	// The attach greeting is always the first frame; drain it so the next
	// settled state is the reply to this command.
	if _, err := firstFrame(ctx, cli); err != nil {
		return err
	}
	if err := cli.StartGame(*difficulty, *bet); err != nil {
		return err
	}
	state, err := waitSettled(ctx, cli)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func handleAction(ctx context.Context, cli *client.Client, action string) error {
	if _, err := firstFrame(ctx, cli); err != nil {
		return err
	}
	if err := cli.PlayerAction(action); err != nil {
		return err
	}
	state, err := waitSettled(ctx, cli)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func handleReset(ctx context.Context, cli *client.Client) error {
	if _, err := firstFrame(ctx, cli); err != nil {
		return err
	}
	if err := cli.ResetGame(); err != nil {
		return err
	}
	state, err := waitSettled(ctx, cli)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func handleWatch(ctx context.Context, cli *client.Client) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for {
		select {
		case msg := <-cli.UpdatesCh:
			if gs, ok := msg.(client.GameStateMsg); ok {
				if err := enc.Encode((*server.GameStateUpdate)(gs)); err != nil {
					return err
				}
			}
		case err := <-cli.ErrorsCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handlePlay deals rounds and plays them with the dealer's own rule:
// hit below 17, stand otherwise.
func handlePlay(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	difficulty := fs.String("difficulty", "medium", "AI difficulty: easy, medium, hard")
	bet := fs.Int64("bet", 100, "Bet amount per round")
	rounds := fs.Int("rounds", 1, "Rounds to play")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	playCtx, cancel := context.WithTimeout(ctx, 4*time.Minute)
	defer cancel()

	if _, err := firstFrame(playCtx, cli); err != nil {
		return err
	}

	var state *server.GameStateUpdate
	for round := 0; round < *rounds; round++ {
		if err := cli.StartGame(*difficulty, *bet); err != nil {
			return err
		}
		var err error
		state, err = waitSettled(playCtx, cli)
		if err != nil {
			return err
		}

		for state.CanHitStand {
			action := "stand"
			if state.Player.Score < 17 {
				action = "hit"
			}
			if err := cli.PlayerAction(action); err != nil {
				return err
			}
			state, err = waitSettled(playCtx, cli)
			if err != nil {
				return err
			}
		}

		if state.IsGameOver {
			break
		}
	}
	return printJSON(state)
}
