// =============================================================================
// Compliance Batch Processor - Drop Folder Watch Mode
// =============================================================================
//
// Watch mode keeps the process alive between batches: after an initial
// run, the driver waits for new files to land in the drop directory and
// runs again. Upstream systems deliver files with scp/rsync, so a short
// settle delay follows each event before the next run picks the file up.
//
// =============================================================================

package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/entityops/compliance-batch/internal/parser"
)

// settleDelay gives an in-flight upload a moment to finish before the
// batch re-scans the drop directory.
const settleDelay = 2 * time.Second

// Watch runs one batch, then re-runs whenever a recognized file appears in
// the drop directory, until ctx is canceled. A canceled mid-batch run has
// already saved its checkpoint; Watch then returns ErrInterrupted.
func (d *Driver) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(d.fm.InputDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", d.fm.InputDir, err)
	}
	d.log.Info("watching drop directory", zap.String("input_dir", d.fm.InputDir))

	for {
		if _, err := d.Run(ctx); err != nil {
			if errors.Is(err, ErrInterrupted) {
				return err
			}
			d.log.Error("batch run failed", zap.Error(err))
		}

		if err := d.await(ctx, watcher); err != nil {
			return err
		}
	}
}

// await blocks until a recognized file lands in the drop directory or ctx
// is canceled.
func (d *Driver) await(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ErrInterrupted
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 || !parser.Recognized(event.Name) {
				continue
			}
			d.log.Info("new input file detected", zap.String("file", event.Name))
			select {
			case <-ctx.Done():
				return ErrInterrupted
			case <-time.After(settleDelay):
			}
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			d.log.Error("watcher error", zap.Error(err))
		}
	}
}
