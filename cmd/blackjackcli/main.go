package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"blackjackd/pkg/client"
	"blackjackd/pkg/logging"
	"blackjackd/pkg/ui"
	"blackjackd/pkg/utils"
)

var (
	serverAddr = flag.String("server", client.DefaultServerAddr, "Blackjack server websocket address")
	dataDir    = flag.String("datadir", "", "Data directory for the session id and logs")
	sessionID  = flag.String("sessionid", "", "Resume this session id instead of the persisted one")
	newSession = flag.Bool("newsession", false, "Forget the persisted session and start fresh")
	debugLevel = flag.String("debuglevel", "info", "Logging level: trace, debug, info, warn, error")
)

func realMain() error {
	flag.Parse()

	datadir := *dataDir
	if datadir == "" {
		datadir = client.DefaultDataDir()
	}
	if err := utils.EnsureDataDirExists(datadir); err != nil {
		return err
	}

	if *newSession {
		if err := client.ClearSession(datadir); err != nil {
			return fmt.Errorf("failed to clear session: %v", err)
		}
	}

	// Logs go to the file only; stdout belongs to the terminal UI.
	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:       filepath.Join(datadir, "logs", "blackjackcli.log"),
		DebugLevel:    *debugLevel,
		MaxLogFiles:   3,
		DisableStdout: true,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %v", err)
	}
	defer logBackend.Close()
	log := logBackend.Logger("MAIN")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cli, err := client.NewClient(ctx, &client.Config{
		ServerAddr: *serverAddr,
		DataDir:    datadir,
		SessionID:  *sessionID,
		LogBackend: logBackend,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer cli.Close()

	log.Infof("Connected to %s", *serverAddr)

	return ui.Run(cli)
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
