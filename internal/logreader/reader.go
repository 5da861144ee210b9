// Package logreader rebuilds structured log records from the plain log text
// Livy keeps for a batch and forwards them to a slog.Handler.
//
// Livy returns the log of a batch as a list of lines with stdout, stderr and
// YARN diagnostics concatenated, and offers no cursor to fetch only new lines.
// The reader fetches the whole log on every poll, splits it with a set of
// regular expressions and drops records it has emitted before.
package logreader

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultInterval is the default delay between two polls.
	DefaultInterval = 400 * time.Millisecond

	// MaxLogSize asks Livy for as many log lines as it keeps.
	MaxLogSize = -1

	minWait = 100 * time.Microsecond
)

// StatusClient is the part of the Livy API the reader depends on.
type StatusClient interface {
	// GetBatchLog returns log lines of a batch. A negative from is omitted
	// from the request; size -1 requests all lines.
	GetBatchLog(ctx context.Context, batchID, from, size int) ([]string, error)
	GetBatchState(ctx context.Context, batchID int) (string, error)
	// IsBatchFinished reports whether the batch has left the starting and
	// running states.
	IsBatchFinished(ctx context.Context, batchID int) (bool, error)
}

// BatchLogReaderConfig configures a BatchLogReader.
type BatchLogReaderConfig struct {
	Client  StatusClient
	BatchID int

	// Location is applied to timestamps that carry no UTC offset. Defaults to UTC.
	Location *time.Location

	// Prefix is prepended to every logger name.
	Prefix string

	// Handler receives the records. Defaults to slog.Default().Handler().
	Handler slog.Handler

	// Registerer, when set, receives the reader's metrics.
	Registerer prometheus.Registerer
}

// BatchLogReader reads the log of one Livy batch and publishes it as slog records.
type BatchLogReader struct {
	client   StatusClient
	batchID  int
	location *time.Location
	prefix   string
	handler  slog.Handler
	registry *registry
	dedup    *deduper
	metrics  *metrics
	now      func() time.Time

	// mu guards last and the dedup check-and-insert.
	mu   sync.Mutex
	last time.Time

	workerMu sync.Mutex
	worker   *worker
}

type worker struct {
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	err      error
}

// NewBatchLogReader creates a reader for the batch in cfg.
func NewBatchLogReader(cfg BatchLogReaderConfig) (*BatchLogReader, error) {
	if cfg.Client == nil {
		return nil, &ArgumentError{Name: "client", Expect: "logreader.StatusClient", Got: cfg.Client}
	}
	if cfg.BatchID < 0 {
		return nil, &ArgumentError{Name: "batch id", Expect: "non-negative int", Got: cfg.BatchID}
	}

	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	handler := cfg.Handler
	if handler == nil {
		handler = slog.Default().Handler()
	}

	return &BatchLogReader{
		client:   cfg.Client,
		batchID:  cfg.BatchID,
		location: location,
		prefix:   cfg.Prefix,
		handler:  handler,
		registry: newRegistry(),
		dedup:    newDeduper(),
		metrics:  newMetrics(cfg.Registerer, cfg.BatchID),
		now:      time.Now,
	}, nil
}

func (r *BatchLogReader) String() string {
	return fmt.Sprintf("<BatchLogReader batch#%d>", r.batchID)
}

// AddParser registers a parser after the built-in ones. The pattern must be
// compiled with the (?m) flag and anchored with ^, and should cover whole
// lines: the matched span is consumed from the log. Parsers must not emit logs
// themselves since a span is parsed again on every poll.
func (r *BatchLogReader) AddParser(name string, pattern *regexp.Regexp, parser ParserFunc) error {
	return r.registry.add(name, pattern, parser)
}

// Read fetches the current log once and emits every record not emitted before.
func (r *BatchLogReader) Read(ctx context.Context) error {
	r.metrics.polls.Inc()

	lines, err := r.client.GetBatchLog(ctx, r.batchID, -1, MaxLogSize)
	if err != nil {
		return fmt.Errorf("fetch log of batch %d: %w", r.batchID, err)
	}

	text := strings.Join(lines, "\n")
	for _, seg := range segmentLog(text, r.registry.snapshot()) {
		rec, ok := r.parse(seg)
		if !ok {
			continue
		}
		r.emit(ctx, seg.Section, rec)
	}
	return nil
}

func (r *BatchLogReader) parse(seg Segment) (Record, bool) {
	switch seg.Kind {
	case SegmentSection:
		return Record{}, false
	case SegmentPlain:
		return Record{
			Level:   sectionLevel[seg.Section],
			Name:    seg.Section,
			Message: seg.Text,
		}, true
	}
	return r.runParser(seg)
}

func (r *BatchLogReader) runParser(seg Segment) (rec Record, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.parseFailed(seg, fmt.Errorf("parser panicked: %v", p))
			rec, ok = Record{}, false
		}
	}()

	rec, err := seg.entry.parse(seg.Match)
	if err != nil {
		r.parseFailed(seg, err)
		return Record{}, false
	}
	return rec, true
}

func (r *BatchLogReader) parseFailed(seg Segment, err error) {
	r.metrics.parseErrs.Inc()
	slog.Error("failed to parse batch log", "batch_id", r.batchID, "parser", seg.entry.name, "raw", seg.Match.Text(), "error", err)
}

func (r *BatchLogReader) emit(ctx context.Context, section string, rec Record) {
	digest := rec.digest()

	r.mu.Lock()
	if !r.dedup.add(digest) {
		r.mu.Unlock()
		r.metrics.duplicates.Inc()
		return
	}

	created := rec.Created
	switch {
	case !created.IsZero():
		if !rec.Zoned {
			created = inLocation(created, r.location)
		}
		r.last = created
	case !r.last.IsZero():
		created = r.last
	default:
		created = r.now().In(r.location)
	}
	r.mu.Unlock()

	name := rec.Name
	if name == "" {
		name = section
	}

	r.metrics.recordEmitted(rec.Level)
	if !r.handler.Enabled(ctx, rec.Level) {
		return
	}

	out := slog.NewRecord(created, rec.Level, rec.Message, 0)
	out.AddAttrs(slog.String(LoggerKey, r.prefix+name))
	if err := r.handler.Handle(ctx, out); err != nil {
		slog.Debug("log handler rejected batch record", "batch_id", r.batchID, "error", err)
	}
}

// ReadUntilFinish polls the log until the batch is finished, then reads once
// more to pick up the remaining lines. With block set it returns when done;
// otherwise it starts a background worker controlled by StopRead and Wait.
// An interval of zero uses DefaultInterval.
func (r *BatchLogReader) ReadUntilFinish(ctx context.Context, block bool, interval time.Duration) error {
	if interval < 0 {
		return &ArgumentError{Name: "interval", Expect: "non-negative time.Duration", Got: interval}
	}
	if interval == 0 {
		interval = DefaultInterval
	}

	r.workerMu.Lock()
	if r.worker != nil {
		r.workerMu.Unlock()
		return &OperationError{Op: "read until finish", Err: ErrWorkerExists}
	}
	if block {
		r.workerMu.Unlock()
		return r.watch(ctx, nil, interval)
	}

	w := &worker{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	r.worker = w
	r.workerMu.Unlock()

	go func() {
		defer close(w.done)
		w.err = r.watch(ctx, w.stop, interval)
		if w.err != nil {
			slog.Debug("batch log worker exited", "batch_id", r.batchID, "error", w.err)
		}
	}()
	return nil
}

func (r *BatchLogReader) watch(ctx context.Context, stop <-chan struct{}, interval time.Duration) error {
	for {
		finished, err := r.client.IsBatchFinished(ctx, r.batchID)
		if err != nil {
			return fmt.Errorf("check state of batch %d: %w", r.batchID, err)
		}
		if finished {
			break
		}

		tick := time.Now()
		if err := r.Read(ctx); err != nil {
			return err
		}

		timer := time.NewTimer(max(interval-time.Since(tick), minWait))
		select {
		case <-stop:
			timer.Stop()
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.Read(ctx)
}

// StopRead asks the background worker to stop at its next wait.
func (r *BatchLogReader) StopRead() error {
	r.workerMu.Lock()
	w := r.worker
	r.workerMu.Unlock()
	if w == nil {
		return &OperationError{Op: "stop read", Err: ErrNoWorker}
	}

	w.stopOnce.Do(func() { close(w.stop) })
	return nil
}

// Wait blocks until the background worker exits and returns its error.
func (r *BatchLogReader) Wait() error {
	r.workerMu.Lock()
	w := r.worker
	r.workerMu.Unlock()
	if w == nil {
		return &OperationError{Op: "wait", Err: ErrNoWorker}
	}

	<-w.done
	return w.err
}
