// Package summary handles display of walk results and statistics
package summary

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bethropolis/ignorewalk/internal/walker"
)

// Logger defines the minimal logging interface required
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Stats are the counters collected while consuming a walk
type Stats struct {
	Entries  int64
	Printed  int64
	Errors   int64
	Loops    int64
	NotFound int64
	Duration time.Duration
}

// DisplayResults shows the end results of a walk
func DisplayResults(logger Logger, stats Stats, quiet bool) {
	if stats.Errors > 0 {
		logger.Warn("%d entries could not be walked (%d not found, %d filesystem loops).",
			stats.Errors, stats.NotFound, stats.Loops)
	}
	if quiet {
		return
	}
	logger.Info("Walked %d entries, printed %d.", stats.Entries, stats.Printed)
	logger.Info("Walk complete in %v.", stats.Duration.Round(time.Millisecond))
}

// DisplaySkippedItems formats and prints information about skipped items
func DisplaySkippedItems(
	logger Logger,
	skippedItems []walker.SkippedItem,
	output io.Writer,
	quiet bool,
) {
	infoLog := func(format string, args ...interface{}) {
		if !quiet {
			logger.Info(format, args...)
		}
	}

	infoLog("--- Skipped Items (%d) ---", len(skippedItems))
	if len(skippedItems) == 0 {
		infoLog("No items were skipped.")
		infoLog("--- End Skipped Items ---")
		return
	}

	sort.SliceStable(skippedItems, func(i, j int) bool {
		return skippedItems[i].Path < skippedItems[j].Path
	})
	for _, item := range skippedItems {
		typeStr := "FILE"
		if item.IsDir {
			typeStr = "DIR " // Add space for alignment
		}
		fmt.Fprintf(output, "Skipped %s: %-50s [%s]\n", typeStr, item.Path, item.Reason)
	}
	infoLog("--- End Skipped Items ---")
}
