//go:build unix

package debug

// Memory/RSS periodic logger enabled when config.Debug is true.
// Logs peak RSS along with Go heap stats; pyramid bitmaps live on the Go heap
// while mmapped band reads only show up in RSS.

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// StartMemLogger launches a goroutine that logs memory stats every interval.
// It is best-effort; failures to query RSS are logged once and suppressed.
// extra, if set, adds attributes describing the open image; it must be safe
// to call from another goroutine.
func StartMemLogger(interval time.Duration, logger *slog.Logger, extra func() []slog.Attr) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for range ticker.C {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []slog.Attr{
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.String("heap_alloc", humanize.IBytes(ms.HeapAlloc)),
				slog.String("heap_inuse", humanize.IBytes(ms.HeapInuse)),
				slog.String("heap_idle", humanize.IBytes(ms.HeapIdle)),
				slog.String("heap_sys", humanize.IBytes(ms.HeapSys)),
				slog.String("next_gc", humanize.IBytes(ms.NextGC)),
				slog.String("max_rss", humanize.IBytes(maxRSS(logger, &rssErrLogged))),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			}
			if extra != nil {
				attrs = append(attrs, extra()...)
			}
			logger.LogAttrs(context.Background(), slog.LevelInfo, "memstats", attrs...)
		}
	}()
}

func maxRSS(logger *slog.Logger, errLogged *bool) uint64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		if !*errLogged {
			logger.Warn("memlog: getrusage failed", slog.String("err", err.Error()))
			*errLogged = true
		}
		return 0
	}
	rss := uint64(ru.Maxrss)
	// Linux and the BSDs report kilobytes, Darwin bytes.
	if runtime.GOOS != "darwin" && runtime.GOOS != "ios" {
		rss *= 1024
	}
	return rss
}
