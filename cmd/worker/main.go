package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/garsonhq/backend-garson/internal/config"
	"github.com/garsonhq/backend-garson/internal/events"
	"github.com/garsonhq/backend-garson/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("connect redis")
	}
	cancel()

	connOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task server")
	}

	srv := asynq.NewServer(connOpt, asynq.Config{
		Concurrency: 8,
		Queues:      map[string]int{"events": 10, "default": 1},
		Logger:      asynqLogger{logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error().Err(err).Str("task_type", task.Type()).Msg("task failed")
		}),
	})

	fanout := fanoutHandler{publisher: redisClient, logger: logger}

	mux := asynq.NewServeMux()
	mux.HandleFunc(events.TaskTypeFanout, fanout.Handle)

	logger.Info().Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}

	<-ctx.Done()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

// fanoutHandler pushes persisted domain events onto Redis pub/sub channels so
// floor displays and the kitchen dashboard receive them in near real time.
type fanoutHandler struct {
	publisher *redis.Client
	logger    zerolog.Logger
}

func (h fanoutHandler) Handle(ctx context.Context, task *asynq.Task) error {
	payload, err := events.DecodeFanout(task)
	if err != nil {
		// Malformed payloads never become deliverable; drop instead of retrying.
		h.logger.Error().Err(err).Msg("drop undecodable event task")
		return nil
	}
	channel := "floor:events:" + payload.Topic
	if err := h.publisher.Publish(ctx, channel, task.Payload()).Err(); err != nil {
		return err
	}
	h.logger.Info().
		Str("event_id", payload.ID.String()).
		Str("topic", payload.Topic).
		Str("aggregate_id", payload.AggregateID.String()).
		Msg("event delivered")
	return nil
}

// asynqLogger adapts zerolog to the task server's logging interface.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
