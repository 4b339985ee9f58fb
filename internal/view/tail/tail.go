package tail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TraceStream/backend/internal/domain/logstore"
)

// ResetBanner is printed whenever the log is cleared.
const ResetBanner = "──── trace log cleared ────"

// Source is the part of the log store the tail needs.
type Source interface {
	Snapshot() logstore.Snapshot
	Subscribe() *logstore.Subscription
}

// Tail prints the live log to a writer, one line per appended message.
// Only the lines added since the previous render are written; a reset
// prints a banner and starts over.
type Tail struct {
	source Source
	out    io.Writer
	banner *color.Color
	logger *zap.Logger

	primed bool
	cycle  uint64
	lines  int
	offset int
}

// New creates a tail writing to out. Colors are enabled only when out is a
// terminal.
func New(source Source, out io.Writer, logger *zap.Logger) *Tail {
	if logger == nil {
		logger = zap.NewNop()
	}

	banner := color.New(color.FgYellow, color.Bold)
	if isTerminal(out) {
		banner.EnableColor()
	} else {
		banner.DisableColor()
	}

	return &Tail{
		source: source,
		out:    out,
		banner: banner,
		logger: logger,
	}
}

// Run renders the current content, then every change, until ctx ends.
func (t *Tail) Run(ctx context.Context) error {
	sub := t.source.Subscribe()
	defer sub.Close()

	if err := t.Render(t.source.Snapshot()); err != nil {
		return err
	}

	for {
		if _, err := sub.Next(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if err := t.Render(t.source.Snapshot()); err != nil {
			t.logger.Warn("Tail write failed", zap.Error(err))
			return err
		}
	}
}

// Render writes whatever the snapshot adds to what was already printed.
func (t *Tail) Render(snap logstore.Snapshot) error {
	if !t.primed {
		t.primed = true
		t.cycle = snap.Cycle
	}

	if snap.Cycle != t.cycle {
		if _, err := t.banner.Fprintln(t.out, ResetBanner); err != nil {
			return err
		}
		t.cycle = snap.Cycle
		t.lines = 0
		t.offset = 0
	}

	if snap.Lines <= t.lines || len(snap.Content) < t.offset {
		return nil
	}

	delta := snap.Content[t.offset:]
	if t.lines > 0 {
		delta = strings.TrimPrefix(delta, logstore.Separator)
	}
	if _, err := fmt.Fprintln(t.out, delta); err != nil {
		return err
	}

	t.lines = snap.Lines
	t.offset = len(snap.Content)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
