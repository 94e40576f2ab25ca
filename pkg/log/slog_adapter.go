package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want subsystem events in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("driver", event.Driver),
		slog.Int("index", event.Index),
		slog.String("subtype", event.Subtype.String()),
		slog.String("category", event.Category.String()),
	}

	if event.PairID != "" {
		attrs = append(attrs, slog.String("pair_id", event.PairID))
	}

	switch {
	case event.Op != nil:
		attrs = append(attrs, slog.String("op", event.Op.Op.String()))
		if event.Op.Op == OpWrite {
			attrs = append(attrs,
				slog.Int("requested", event.Op.Requested),
				slog.Int("accepted", event.Op.Accepted),
			)
		}
		if event.Op.Op == OpIoctl {
			attrs = append(attrs, slog.Uint64("cmd", uint64(event.Op.Cmd)))
		}
	case event.State != nil:
		attrs = append(attrs,
			slog.String("what", event.State.What),
			slog.String("old_state", event.State.OldState),
			slog.String("new_state", event.State.NewState),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("op", event.Error.Op.String()),
			slog.String("error_msg", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "tty", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
