package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FirstDerailOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if got := bd.Check(WindowStats{WindowEndTick: 10, Active: 2, Moves: 5}); hasBookmark(got, BookmarkFirstDerail) {
		t.Error("no derail yet")
	}
	if got := bd.Check(WindowStats{WindowEndTick: 20, Active: 1, Moves: 5, Derails: 1}); !hasBookmark(got, BookmarkFirstDerail) {
		t.Error("expected first_derail bookmark")
	}
	if got := bd.Check(WindowStats{WindowEndTick: 30, Active: 1, Moves: 5, Derails: 2}); hasBookmark(got, BookmarkFirstDerail) {
		t.Error("first_derail should fire once")
	}
}

func TestBookmarkDetector_Congestion(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 10, Active: 4, Moves: 30, Holds: 1, Throughput: 0.8})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 50, Active: 4, Moves: 30, Holds: 6, Throughput: 0.8})
	if !hasBookmark(bookmarks, BookmarkCongestion) {
		t.Error("expected congestion bookmark")
	}
}

func TestBookmarkDetector_ThroughputDrop(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 10, Active: 3, Moves: 24, Throughput: 0.8})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 50, Active: 3, Moves: 6, Throughput: 0.2})
	if !hasBookmark(bookmarks, BookmarkThroughputDrop) {
		t.Error("expected throughput_drop bookmark")
	}

	// Drained fleet is not a drop
	bd = NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 10, Active: 3, Moves: 24, Throughput: 0.8})
	}
	bookmarks = bd.Check(WindowStats{WindowEndTick: 50, Finished: 3, Throughput: 0})
	if hasBookmark(bookmarks, BookmarkThroughputDrop) {
		t.Error("throughput_drop should need active trains")
	}
	if !hasBookmark(bookmarks, BookmarkDrained) {
		t.Error("expected drained bookmark")
	}
}

func TestBookmarkDetector_GridlockFiresPerEpisode(t *testing.T) {
	bd := NewBookmarkDetector(10)

	steps := []struct {
		stats WindowStats
		want  bool
	}{
		{WindowStats{WindowEndTick: 10, Active: 2, Moves: 0}, true},
		{WindowStats{WindowEndTick: 20, Active: 2, Moves: 0}, false},
		{WindowStats{WindowEndTick: 30, Active: 2, Moves: 3}, false},
		{WindowStats{WindowEndTick: 40, Active: 2, Moves: 0}, true},
	}
	for _, s := range steps {
		got := hasBookmark(bd.Check(s.stats), BookmarkGridlock)
		if got != s.want {
			t.Errorf("tick %d: gridlock = %v, want %v", s.stats.WindowEndTick, got, s.want)
		}
	}
}

func TestBookmarkDetector_Reset(t *testing.T) {
	bd := NewBookmarkDetector(4)
	bd.Check(WindowStats{WindowEndTick: 10, Active: 1, Derails: 1})
	bd.Reset()

	if got := bd.Check(WindowStats{WindowEndTick: 10, Active: 1, Moves: 1, Derails: 1}); !hasBookmark(got, BookmarkFirstDerail) {
		t.Error("expected first_derail again after reset")
	}
}
