package obs

import (
	"context"
	"time"
)

// Time logs the duration of an operation. Use it as
//
//	defer obs.Time(ctx, "op")(&err)
//
// so the outcome of the named return is logged alongside the duration.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)
		logger := Ctx(ctx)

		if errp != nil && *errp != nil {
			logger.Warn().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Err(*errp).Msg("operation failed")
			return
		}
		logger.Debug().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Msg("operation done")
	}
}
