package lang

import (
	"context"
	"log/slog"
)

// degrade records a recoverable failure in scope h and returns None.
func (in *Interpreter) degrade(
	ctx context.Context, h Handle, msg string, attrs ...slog.Attr,
) Token {
	in.logger.TraceContext(ctx, msg,
		append([]slog.Attr{slog.String("scope", in.tree.Path(h))}, attrs...)...)

	return None()
}
