package telemetry

import (
	"sync/atomic"
	"time"
)

// Stats counts endpoint activity since process start. All methods are
// safe for concurrent use.
type Stats struct {
	start            time.Time
	auctionsReceived atomic.Int64
	auctionsRejected atomic.Int64
	solutionsBuilt   atomic.Int64
	emptySolutions   atomic.Int64
	notifications    atomic.Int64
}

// NewStats returns a zeroed counter set with the uptime clock started.
func NewStats() *Stats {
	return &Stats{start: time.Now().UTC()}
}

func (s *Stats) AuctionReceived()      { s.auctionsReceived.Add(1) }
func (s *Stats) AuctionRejected()      { s.auctionsRejected.Add(1) }
func (s *Stats) SolutionBuilt()        { s.solutionsBuilt.Add(1) }
func (s *Stats) SolutionEmpty()        { s.emptySolutions.Add(1) }
func (s *Stats) NotificationReceived() { s.notifications.Add(1) }

// StartedAt reports when the counter set was created, which doubles as
// the process start time for status reporting.
func (s *Stats) StartedAt() time.Time {
	return s.start
}

// Snapshot is a point-in-time copy of the counters in the JSON shape the
// status endpoint serves.
type Snapshot struct {
	UptimeSeconds    int64 `json:"uptime_seconds"`
	AuctionsReceived int64 `json:"auctions_received"`
	AuctionsRejected int64 `json:"auctions_rejected"`
	SolutionsBuilt   int64 `json:"solutions_built"`
	EmptySolutions   int64 `json:"empty_solutions"`
	Notifications    int64 `json:"notifications"`
}

// Snapshot reads all counters at once.
func (s *Stats) Snapshot() Snapshot {
	uptime := int64(time.Since(s.start).Seconds())
	if uptime < 0 {
		uptime = 0
	}
	return Snapshot{
		UptimeSeconds:    uptime,
		AuctionsReceived: s.auctionsReceived.Load(),
		AuctionsRejected: s.auctionsRejected.Load(),
		SolutionsBuilt:   s.solutionsBuilt.Load(),
		EmptySolutions:   s.emptySolutions.Load(),
		Notifications:    s.notifications.Load(),
	}
}
