package search

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/udyoglabs/ncosearch/core"
)

// Event captures the outcome of a single search call. Events are emitted
// after the response has been assembled and never influence the result.
type Event struct {
	Time          time.Time     `json:"time"`
	Query         string        `json:"query"`
	Language      core.Language `json:"language"`
	K             int           `json:"k"`
	ResultCount   int           `json:"result_count"`
	TopCode       string        `json:"top_code,omitempty"`
	TopConfidence float64       `json:"top_confidence,omitempty"`
	LowConfidence bool          `json:"low_confidence"`
	Latency       time.Duration `json:"latency_ns"`
}

// EventSink receives search events. Implementations must be safe for
// concurrent use; a sink that blocks delays only the goroutine that emits
// the event, never the search itself.
type EventSink interface {
	Record(event Event)
}

type noopSink struct{}

func (noopSink) Record(Event) {}

// LogSink writes search events through a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(event Event) {
	s.logger.Info("search",
		slog.String("query", event.Query),
		slog.String("language", string(event.Language)),
		slog.Int("k", event.K),
		slog.Int("results", event.ResultCount),
		slog.String("top_code", event.TopCode),
		slog.Float64("top_confidence", event.TopConfidence),
		slog.Bool("low_confidence", event.LowConfidence),
		slog.Duration("latency", event.Latency))
}

// WriterSink appends one JSON object per event to the underlying writer,
// typically a log file rotated by the operator.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

func (s *WriterSink) Record(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}

// EventStats aggregates a search event log.
type EventStats struct {
	Searches       int                   `json:"searches"`
	LowConfidence  int                   `json:"low_confidence"`
	ZeroResults    int                   `json:"zero_results"`
	ByLanguage     map[core.Language]int `json:"by_language"`
	AverageLatency time.Duration         `json:"average_latency_ns"`
}

// CollectEventStats reads a JSONL event log, as written by WriterSink, and
// summarizes it. Reading stops at the first malformed record, so a log
// truncated by a crash still reports everything before the tear.
func CollectEventStats(r io.Reader) EventStats {
	stats := EventStats{ByLanguage: make(map[core.Language]int)}

	var totalLatency time.Duration
	dec := json.NewDecoder(r)
	for {
		var event Event
		if err := dec.Decode(&event); err != nil {
			break
		}
		stats.Searches++
		stats.ByLanguage[event.Language]++
		if event.LowConfidence {
			stats.LowConfidence++
		}
		if event.ResultCount == 0 {
			stats.ZeroResults++
		}
		totalLatency += event.Latency
	}

	if stats.Searches > 0 {
		stats.AverageLatency = totalLatency / time.Duration(stats.Searches)
	}
	return stats
}
