package main

import (
	"fmt"

	"github.com/jwulff/finvoice/internal/app"
	"github.com/jwulff/finvoice/internal/config"
	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/daemon"
	"github.com/jwulff/finvoice/internal/db"
	"github.com/jwulff/finvoice/internal/notify"
	"github.com/jwulff/finvoice/internal/voice"
	"go.uber.org/zap"

	tea "github.com/charmbracelet/bubbletea"
)

// runInteractive wires the conversation core to the TUI and blocks until the
// user quits.
func runInteractive() error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	exchanges := conversation.NewLog()
	if cfg.HistoryLimit > 0 {
		restored, err := store.RestoreExchanges(cfg.HistoryLimit)
		if err != nil {
			return fmt.Errorf("restore history: %w", err)
		}
		for _, e := range restored {
			exchanges.Append(e)
		}
		logger.Info("history restored", zap.Int("exchanges", len(restored)))
	}

	archive := db.NewArchiver(store, logger)
	defer archive.Close()

	loop := app.NewLoopClock()
	rnd := conversation.NewRandomSource(cfg.Seed)
	text := conversation.NewTextPolicy(catalog, rnd)
	bridge := conversation.NewBridge(logger.Named("bridge"))

	chat := conversation.NewChat(conversation.ChatConfig{
		Log:        exchanges,
		Policy:     text,
		Clock:      loop,
		Bridge:     bridge,
		ReplyDelay: cfg.ReplyDelay,
		Logger:     logger.Named("chat"),
	})
	notices := notify.NewSurface(loop)

	microphone, label := newMicrophone(cfg, loop)
	recorder := voice.NewRecorder(voice.Config{
		Microphone:      microphone,
		Clock:           loop,
		Transcriber:     voice.NewCatalogTranscriber(catalog, rnd),
		Policy:          conversation.NewVoicePolicy(catalog, rnd),
		Bridge:          bridge,
		Notifier:        notices,
		ProcessingDelay: cfg.TranscribeDelay,
		NoticeDuration:  cfg.NoticeDuration,
		Logger:          logger.Named("voice"),
	})
	recorder.SetPlayback(cfg.Playback)

	model := app.New(app.Deps{
		Chat:     chat,
		Recorder: recorder,
		Notices:  notices,
		Clock:    loop,
		Archive:  archive,
		MicLabel: label,
		Logger:   logger.Named("app"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	loop.Attach(p.Send)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func newMicrophone(c *config.Config, loop *app.LoopClock) (voice.MicrophoneSource, string) {
	if c.Mic == config.MicDaemon {
		label := "daemon"
		if c.CaptureDevice != "" {
			label += " (" + c.CaptureDevice + ")"
		}
		return daemon.NewMicrophone(c.CaptureSocket, c.CaptureDevice, loop.Post, logger.Named("daemon")), label
	}
	return voice.SimulatedMicrophone{Clock: loop}, "simulated"
}
