package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstDerail    BookmarkType = "first_derail"
	BookmarkCongestion     BookmarkType = "congestion"
	BookmarkThroughputDrop BookmarkType = "throughput_drop"
	BookmarkGridlock       BookmarkType = "gridlock"
	BookmarkDrained        BookmarkType = "drained"
)

// Bookmark marks a window worth looking at when replaying a run.
type Bookmark struct {
	Type        BookmarkType `json:"type"`
	Tick        int          `json:"tick"`
	Description string       `json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches window stats for notable moments.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	derailSeen bool
	gridlocked bool // inside a run of windows with no moves
	drained    bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkFirstDerail,
		bd.checkCongestion,
		bd.checkThroughputDrop,
		bd.checkGridlock,
		bd.checkDrained,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

// Reset forgets all history.
func (bd *BookmarkDetector) Reset() {
	*bd = *NewBookmarkDetector(bd.historySize)
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFirstDerail(stats WindowStats) *Bookmark {
	if bd.derailSeen || stats.Derails == 0 {
		return nil
	}
	bd.derailSeen = true
	return &Bookmark{
		Type:        BookmarkFirstDerail,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d train(s) derailed", stats.Derails),
	}
}

// checkCongestion fires when holds exceed twice the rolling average.
func (bd *BookmarkDetector) checkCongestion(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Holds
	}
	avg := float64(total) / float64(len(history))

	if stats.Holds >= 3 && float64(stats.Holds) > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkCongestion,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d holds vs %.1f average", stats.Holds, avg),
		}
	}
	return nil
}

// checkThroughputDrop fires when throughput falls below half its rolling
// average while trains are still active.
func (bd *BookmarkDetector) checkThroughputDrop(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Active == 0 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Throughput
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.Throughput < avg*0.5 {
		return &Bookmark{
			Type:        BookmarkThroughputDrop,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Throughput %.2f is %.0f%% of average (%.2f)", stats.Throughput, stats.Throughput/avg*100, avg),
		}
	}
	return nil
}

// checkGridlock fires once per run of windows in which active trains made
// no move at all.
func (bd *BookmarkDetector) checkGridlock(stats WindowStats) *Bookmark {
	stuck := stats.Active > 0 && stats.Moves == 0
	if !stuck {
		bd.gridlocked = false
		return nil
	}
	if bd.gridlocked {
		return nil
	}
	bd.gridlocked = true
	return &Bookmark{
		Type:        BookmarkGridlock,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d active train(s) made no move", stats.Active),
	}
}

func (bd *BookmarkDetector) checkDrained(stats WindowStats) *Bookmark {
	if bd.drained || stats.Pending != 0 || stats.Active != 0 || stats.Finished == 0 {
		return nil
	}
	bd.drained = true
	return &Bookmark{
		Type:        BookmarkDrained,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("All %d trains finished", stats.Finished),
	}
}
