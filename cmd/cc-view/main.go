package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/cc-view/internal/config"
	"github.com/nixlim/cc-view/internal/feed"
	"github.com/nixlim/cc-view/internal/receiver"
	"github.com/nixlim/cc-view/internal/settings"
	"github.com/nixlim/cc-view/internal/storage"
	"github.com/nixlim/cc-view/internal/transcript"
	"github.com/nixlim/cc-view/internal/tui"
)

func main() {
	setupFlag := flag.Bool("setup", false, "Configure Claude Code telemetry settings and exit")
	debugFlag := flag.String("debug", "", "Write OTEL debug log (JSONL) to the specified file path")
	flag.Parse()

	if *setupFlag {
		RunSetup()
		return
	}

	loadResult, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc-view: config error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadResult.Config

	for _, w := range loadResult.Warnings {
		fmt.Fprintf(os.Stderr, "cc-view: config warning: %s\n", w)
	}

	store, isPersistent, err := storage.NewStore(cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc-view: storage error: %v\n", err)
		os.Exit(1)
	}

	var recvOpts []receiver.ReceiverOption
	if *debugFlag != "" {
		debugFile, err := os.OpenFile(*debugFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cc-view: failed to open debug log %q: %v\n", *debugFlag, err)
			os.Exit(1)
		}
		defer debugFile.Close()
		recvOpts = append(recvOpts, receiver.WithLogger(receiver.NewFileLogger(debugFile)))
	}

	recv := receiver.New(cfg.Receiver, store, recvOpts...)

	feedBuf := feed.NewRingBuffer(cfg.Display.FeedBufferSize)

	store.OnEvent(func(sessionID string, e transcript.Event) {
		feedBuf.Add(feed.FormatEvent(sessionID, e))
	})

	shutdownMgr := tui.NewShutdownManager()
	shutdownMgr.StopReceiver = func(ctx context.Context) error {
		recv.Stop()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.SetOutput(io.Discard)

	if err := recv.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cc-view: failed to start receivers: %v\n", err)
		os.Exit(1)
	}

	model := tui.NewModel(cfg,
		tui.WithStateProvider(store),
		tui.WithFeedProvider(&feedAdapter{buf: feedBuf}),
		tui.WithSettingsWriter(&settingsAdapter{grpcPort: cfg.Receiver.GRPCPort}),
		tui.WithStartView(tui.ViewStartup),
		tui.WithPersistenceFlag(isPersistent),
		tui.WithOnShutdown(func() {
			_ = shutdownMgr.Shutdown()
			_ = store.Close()
		}),
	)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
	)

	go func() {
		select {
		case <-sigCh:
			_ = shutdownMgr.Shutdown()
			_ = store.Close()
			p.Quit()
		case <-ctx.Done():
			return
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "cc-view: %v\n", err)
		os.Exit(1)
	}
}

type feedAdapter struct {
	buf *feed.RingBuffer
}

func (a *feedAdapter) Recent(limit int) []feed.Line {
	all := a.buf.ListAll()
	if len(all) <= limit {
		return all
	}
	return all[len(all)-limit:]
}

func (a *feedAdapter) RecentForSession(sessionID string, limit int) []feed.Line {
	all := a.buf.ListBySession(sessionID)
	if len(all) <= limit {
		return all
	}
	return all[len(all)-limit:]
}

type settingsAdapter struct {
	grpcPort int
}

func (a *settingsAdapter) EnableTelemetry() error {
	output := settings.Merge(settings.MergeOptions{
		Interactive: false,
		GRPCPort:    a.grpcPort,
	})
	if output.Result == settings.MergeError {
		return output.Err
	}
	return nil
}

func (a *settingsAdapter) FixEndpoint() error {
	output := settings.Merge(settings.MergeOptions{
		Interactive: false,
		FixPortOnly: true,
		GRPCPort:    a.grpcPort,
	})
	if output.Result == settings.MergeError {
		return output.Err
	}
	return nil
}
