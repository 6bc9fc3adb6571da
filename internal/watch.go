package internal

import (
	"context"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/fileio"
)

// pathSource is implemented by sources backed by local files
type pathSource interface {
	Paths() []string
}

// WatchAndRun analyses once, then again every time one of the source files
// changes, until ctx is done. Each outcome is handed to fn.
func (a *App) WatchAndRun(ctx context.Context, fn func(*Report, error)) error {
	ps, ok := a.source.(pathSource)
	if !ok {
		return errors.New(errors.ErrorTypeConfig, "data.watch", "watching needs a file source, got "+a.source.Name())
	}

	watcher, err := fileio.NewWatcherWithConfig(ps.Paths(), fileio.WatcherConfig{
		DebounceTime: a.config.Data.WatchDebounce,
	})
	if err != nil {
		return errors.Wrap(errors.ErrorTypeSource, "data.watch", err)
	}

	// watch before the first run so edits made during it are not missed
	if err := watcher.Start(); err != nil {
		_ = watcher.Close()
		return errors.Wrap(errors.ErrorTypeSource, "data.watch", err)
	}
	fn(a.Analyze(ctx))

	return watcher.Run(ctx, func(ev fileio.FileEvent) {
		if ev.Type == fileio.EventDelete {
			a.logger.Warnf("%s was removed, waiting for it to come back", ev.Path)
			return
		}
		a.logger.Infof("%s changed, re-running analysis", ev.Path)
		fn(a.Analyze(ctx))
	})
}
