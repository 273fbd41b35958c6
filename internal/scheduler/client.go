package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"lead_scoring_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// recalculateUniqueTTL collapses repeated batch requests (e.g. several config edits in a row) into one task.
const recalculateUniqueTTL = 2 * time.Minute

type Client struct {
	client *asynq.Client
	queue  string
}

// RecalculationScheduler hands batch recalculations to the job queue.
type RecalculationScheduler interface {
	EnqueueRecalculateAll(ctx context.Context, payload RecalculateAllPayload) error
}

// LeadScoringScheduler hands single-lead calculations to the job queue.
type LeadScoringScheduler interface {
	EnqueueCalculateLead(ctx context.Context, payload CalculateLeadPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRecalculateAll queues a batch run. A duplicate pending batch is not an error.
func (c *Client) EnqueueRecalculateAll(ctx context.Context, payload RecalculateAllPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRecalculateAllTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.Unique(recalculateUniqueTTL),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func (c *Client) EnqueueCalculateLead(ctx context.Context, payload CalculateLeadPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewCalculateLeadTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(5))
	return err
}

// NewRedisClient opens a go-redis client on the scheduler's Redis, for the distributed score locks.
func NewRedisClient(cfg config.SchedulerConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisOptions(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redisOptions(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

func redisOptions(redisURL string, tlsInsecure bool) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		opt.TLSConfig = clone
	} else if tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return opt, nil
}
