package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"streetbite/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second

	readErrorBackoff = time.Second
)

// EventProcessor applies one engagement event.
type EventProcessor interface {
	HandleEvent(ctx context.Context, event queue.EngagementEvent) error
}

// ManagerConfig tunes the engagement workers. Zero values take the defaults.
type ManagerConfig struct {
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration
}

// Manager runs the engagement workers. Each worker is its own consumer in
// the group: it first replays whatever it left unacked, then reads new
// events until Stop. Every event is acked after one attempt, failed or not.
type Manager struct {
	consumer  queue.Consumer
	processor EventProcessor
	cfg       ManagerConfig
	instance  string

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewManager(consumer queue.Consumer, processor EventProcessor, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:  consumer,
		processor: processor,
		cfg:       cfg,
		instance:  uuid.NewString()[:8],
	}
}

// Start creates the consumer group if needed and launches the workers.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx); err != nil {
		return err
	}
	if n, err := m.consumer.Pending(ctx); err == nil && n > 0 {
		log.Printf("[Manager] %d engagement events awaiting ack", n)
	}

	ctx, m.cancel = context.WithCancel(ctx)
	for i := 1; i <= m.cfg.WorkerCount; i++ {
		w := &streamWorker{
			id:        i,
			name:      m.consumerName(i),
			consumer:  m.consumer,
			processor: m.processor,
			cfg:       m.cfg,
		}
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.run(ctx)
		}()
	}

	log.Printf("[Manager] Started %d engagement workers (instance %s)", m.cfg.WorkerCount, m.instance)
	return nil
}

// Stop cancels the workers and waits for in-flight events to finish.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	log.Printf("[Manager] Engagement workers stopped")
}

// consumerName is unique across process instances, e.g. "engagement-3f2a9c1d-1".
func (m *Manager) consumerName(workerID int) string {
	return fmt.Sprintf("engagement-%s-%d", m.instance, workerID)
}

type streamWorker struct {
	id        int
	name      string
	consumer  queue.Consumer
	processor EventProcessor
	cfg       ManagerConfig
}

func (w *streamWorker) run(ctx context.Context) {
	w.replayPending(ctx)

	for ctx.Err() == nil {
		messages, err := w.consumer.Read(ctx, w.name, w.cfg.BatchSize, w.cfg.BlockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[Worker-%d] %v", w.id, err)
			select {
			case <-ctx.Done():
			case <-time.After(readErrorBackoff):
			}
			continue
		}
		w.apply(ctx, messages)
	}
}

// replayPending drains what this consumer name was handed but never acked.
func (w *streamWorker) replayPending(ctx context.Context) {
	for ctx.Err() == nil {
		messages, err := w.consumer.ReadPending(ctx, w.name, w.cfg.BatchSize)
		if err != nil {
			log.Printf("[Worker-%d] Replay pending: %v", w.id, err)
			return
		}
		if len(messages) == 0 {
			return
		}
		log.Printf("[Worker-%d] Replaying %d pending events", w.id, len(messages))
		w.apply(ctx, messages)
	}
}

// apply finishes the whole batch even after Stop so nothing read is left unacked.
func (w *streamWorker) apply(ctx context.Context, messages []queue.Message) {
	ctx = context.WithoutCancel(ctx)
	for _, msg := range messages {
		if err := w.processor.HandleEvent(ctx, msg.Event); err != nil {
			log.Printf("[Worker-%d] Event %s not applied: %v", w.id, msg.ID, err)
		}
		if err := w.consumer.Ack(ctx, msg.ID); err != nil {
			log.Printf("[Worker-%d] %v", w.id, err)
		}
	}
}
