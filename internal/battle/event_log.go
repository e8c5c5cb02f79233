package battle

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle/spatial"
)

const (
	EventBufferSize        = 4096
	MaxEventsPerSec        = 20000
	MaxEventsPerFaction    = 2000
	BatchFlushSize         = 128
	BatchFlushInterval     = 100 * time.Millisecond
	FactionLimiterCleanup  = 5 * time.Minute
)

// EventLog provides bounded, rate-limited outbound event logging with
// backpressure, adapted from the source's circular-buffer + per-source
// rate limiter design. The tick loop is the sole producer; draining to
// disk/socket runs on a separate goroutine via a lock-free SPSC handoff.
type EventLog struct {
	queue *spatial.LockFreeQueue[Event]

	globalLimiter   *rate.Limiter
	factionLimiters sync.Map // map[string]*factionLimiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	sequence     uint64
	droppedCount uint64
	totalCount   uint64
}

type factionLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewEventLog creates a bounded event log backed by a lock-free ring.
func NewEventLog() *EventLog {
	return &EventLog{
		queue:         spatial.NewLockFreeQueue[Event](EventBufferSize),
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the async writer goroutine, appending newline-delimited
// JSON to filePath (empty = in-memory only, used by tests).
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	el.filePath = filePath
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = f
	}
	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
	return nil
}

// Stop gracefully drains and shuts down the event log.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()
		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// Emit appends an already-constructed event, subject to global and
// per-faction rate limiting (DoS protection against a runaway ability
// handler or combat loop). Returns false if rate-limited or the ring is
// full; callers must treat a false return as non-fatal (events are
// best-effort, never load-bearing for combat correctness).
func (el *EventLog) Emit(event Event) bool {
	if !el.globalLimiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}
	if event.FactionID != "" {
		if !el.factionLimiter(event.FactionID).Allow() {
			atomic.AddUint64(&el.droppedCount, 1)
			return false
		}
	}

	event.Sequence = atomic.AddUint64(&el.sequence, 1)
	if !el.queue.TryPush(event) {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}
	atomic.AddUint64(&el.totalCount, 1)
	return true
}

// EmitSimple constructs and emits an event in one call.
func (el *EventLog) EmitSimple(eventType EventType, simTime float64, factionID string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, simTime, factionID, payload))
}

func (el *EventLog) factionLimiter(factionID string) *rate.Limiter {
	if entry, ok := el.factionLimiters.Load(factionID); ok {
		e := entry.(*factionLimiterEntry)
		e.lastUsed = time.Now()
		return e.limiter
	}
	entry := &factionLimiterEntry{
		limiter:  rate.NewLimiter(MaxEventsPerFaction, MaxEventsPerFaction/10),
		lastUsed: time.Now(),
	}
	actual, _ := el.factionLimiters.LoadOrStore(factionID, entry)
	return actual.(*factionLimiterEntry).limiter
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()
	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			el.flushBatch(el.queue.Drain(BatchFlushSize))
			return
		case <-ticker.C:
			el.flushBatch(el.queue.Drain(BatchFlushSize))
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()
	ticker := time.NewTicker(FactionLimiterCleanup)
	defer ticker.Stop()
	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-FactionLimiterCleanup)
			el.factionLimiters.Range(func(key, value interface{}) bool {
				if value.(*factionLimiterEntry).lastUsed.Before(cutoff) {
					el.factionLimiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (el *EventLog) flushBatch(batch []Event) {
	if len(batch) == 0 {
		return
	}
	el.fileMu.Lock()
	defer el.fileMu.Unlock()
	if el.file == nil {
		return
	}
	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		el.file.Write(data)
		el.file.Write([]byte("\n"))
	}
}

// Stats returns metrics for monitoring and the diagnostic severity rollup.
func (el *EventLog) Stats() map[string]interface{} {
	return map[string]interface{}{
		"total":   atomic.LoadUint64(&el.totalCount),
		"dropped": atomic.LoadUint64(&el.droppedCount),
		"pending": el.queue.Len(),
		"running": el.running.Load(),
	}
}

func (el *EventLog) DroppedCount() uint64 { return atomic.LoadUint64(&el.droppedCount) }
func (el *EventLog) TotalCount() uint64   { return atomic.LoadUint64(&el.totalCount) }
