package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/studiowebux/tabkeys/internal/agent"
	"github.com/studiowebux/tabkeys/internal/config"
	"github.com/studiowebux/tabkeys/internal/controller"
	"github.com/studiowebux/tabkeys/internal/keybinds"
	"github.com/studiowebux/tabkeys/internal/messaging"
	"github.com/studiowebux/tabkeys/internal/store"
	"github.com/studiowebux/tabkeys/internal/tui"
)

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// newController builds a controller over the configured groups file and,
// for a file store, broadcasts update-hotkeys whenever the file changes.
// The returned func stops the watcher.
func newController(ctx context.Context, s config.Settings, b controller.Broadcaster, logger *slog.Logger) (*controller.Controller, func(), error) {
	groupsPath, err := s.ResolvedGroupsFile()
	if err != nil {
		return nil, nil, err
	}
	groups, err := controller.LoadGroups(groupsPath)
	if err != nil {
		return nil, nil, err
	}

	ctrl := controller.New(b, controller.Options{
		Groups:     groups,
		GroupsPath: groupsPath,
		Logger:     logger,
	})

	stop := func() {}
	if store.Kind(s.Store) == store.KindFile || s.Store == "" {
		path, err := s.ResolvedStorePath()
		if err != nil {
			return nil, nil, err
		}
		watcher, err := store.NewWatcher(path, store.WithWatchLogger(logger))
		if err != nil {
			logger.Warn("[CONTROLLER] hotkeys file not watched", "path", path, "error", err)
		} else {
			go ctrl.WatchHotkeys(ctx, watcher.Start())
			stop = func() { _ = watcher.Close() }
		}
	}

	return ctrl, stop, nil
}

// RunController serves agents over websocket until ctx is done
func RunController(ctx context.Context, s config.Settings, w io.Writer, logger *slog.Logger) error {
	logger = loggerOrDefault(logger)
	hub := messaging.NewHub(messaging.HubOptions{
		Addr:     s.ListenAddr,
		SenderID: s.ExtensionID,
		Logger:   logger,
	})

	ctrl, stopWatch, err := newController(ctx, s, hub, logger)
	if err != nil {
		return err
	}
	defer stopWatch()

	hub.SetHandler(ctrl.Handle)
	if err := hub.Start(ctx); err != nil {
		return err
	}
	success(w, "controller listening on %s", hub.URL())
	subtle(w, "%d group(s), active %s", len(ctrl.Groups()), ctrl.Active())

	<-ctx.Done()
	hub.Stop()
	subtle(w, "controller stopped")
	return nil
}

// channel is what the agent needs from a controller connection
type channel interface {
	keybinds.ActionChannel
	agent.SignalSource
	Close() error
}

// connect dials the configured controller, or embeds one when the URL is
// config.LocalController
func connect(ctx context.Context, s config.Settings, logger *slog.Logger) (channel, string, func(), error) {
	logger = loggerOrDefault(logger)
	if s.ControllerURL == config.LocalController {
		lb := messaging.NewLoopback(s.ExtensionID)
		ctrl, stopWatch, err := newController(ctx, s, lb, logger)
		if err != nil {
			return nil, "", nil, err
		}
		lb.SetHandler(ctrl.Handle)
		return lb, "embedded controller", stopWatch, nil
	}

	client, err := messaging.Dial(ctx, s.ControllerURL, messaging.WithClientLogger(logger))
	if err != nil {
		return nil, "", nil, err
	}
	return client, s.ControllerURL, func() {}, nil
}

// RunAgent runs the interactive agent until the user quits
func RunAgent(ctx context.Context, s config.Settings, logger *slog.Logger) error {
	logger = loggerOrDefault(logger)
	st, path, err := OpenStore(s)
	if err != nil {
		return err
	}
	defer st.Close()

	ch, connection, stop, err := connect(ctx, s, logger)
	if err != nil {
		return fmt.Errorf("failed to reach controller: %w", err)
	}
	defer stop()
	defer ch.Close()

	opts := agent.Options{
		ExtensionID: s.ExtensionID,
		Store:       st,
		Channel:     ch,
		Signals:     ch,
		Logger:      logger,
	}

	// the dispatch log shares the database when hotkeys live there too
	if db, ok := st.(*store.SQLiteStore); ok {
		opts.Recorder = db
	} else if db, err := store.OpenSQLite(config.DatabasePath); err != nil {
		logger.Warn("[AGENT] dispatch log disabled", "error", err)
	} else {
		defer db.Close()
		opts.Recorder = db
	}

	sched := tui.NewScheduler()
	opts.Scheduler = sched.Schedule

	a, err := agent.New(opts)
	if err != nil {
		return err
	}

	return tui.Run(ctx, a, sched, tui.Options{
		ReleaseDelay: s.ReleaseDelay,
		Connection:   connection,
		StoreLabel:   fmt.Sprintf("%s (%s)", s.Store, path),
	})
}
