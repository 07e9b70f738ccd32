package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueConfirmacion = "jobs:confirmacion"

	jobConfirmacion = "confirmacion"
	popTimeout      = 5 * time.Second
)

// Job is the envelope stored in the Redis lists.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one job payload. A returned error means the job is
// exhausted and goes to the dead letter queue.
type JobHandler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// ConfirmacionPayload identifies the submission whose receipt must be sent.
type ConfirmacionPayload struct {
	SubmissionID int64 `json:"submission_id"`
}

// EnqueueConfirmacion pushes a confirmation job for the given submission.
func (d *Dispatcher) EnqueueConfirmacion(ctx context.Context, submissionID int64) error {
	return d.enqueue(ctx, QueueConfirmacion, jobConfirmacion, ConfirmacionPayload{SubmissionID: submissionID})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the queues in
// handlers (queue name → handler). Each goroutine blocks on BRPOP, so idle
// workers cost nothing. The returned WaitGroup is done once every worker has
// observed ctx cancellation.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers map[string]JobHandler, numWorkers int) *sync.WaitGroup {
	var wg sync.WaitGroup
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	if len(queues) == 0 || numWorkers <= 0 {
		return &wg
	}

	for i := range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runWorker(ctx, rdb, handlers, queues, i)
		}()
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers map[string]JobHandler, queues []string, id int) {
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		result, err := rdb.BRPop(ctx, popTimeout, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		processJob(ctx, rdb, handlers[result[0]], result[0], result[1])
	}
}

func processJob(ctx context.Context, rdb *redis.Client, h JobHandler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(`null`), "invalid envelope: "+err.Error(), 0)
		return
	}
	if h == nil {
		log.Error().Str("queue", queue).Msg("no handler for queue")
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := h.Process(ctx, job.Payload); err != nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), maxAttempts)
	}
}
