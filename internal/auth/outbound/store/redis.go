package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/trace"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
	"github.com/danuartha/authgate/internal/pkg/instrument"
)

const mutateMaxRetries = 5

// Redis implements the repository over a Redis key-value layout.
type Redis struct {
	client *redis.Client
	tracer trace.Tracer
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client *redis.Client, ins instrument.Instrumentation) *Redis {
	return &Redis{
		client: client,
		tracer: ins.Tracer("auth.store"),
	}
}

// CreateUser stores a new user. Email uniqueness is enforced through an
// index key claimed with SETNX; goerror.ErrConflict is returned when the
// email is already taken.
func (s *Redis) CreateUser(ctx context.Context, user entity.User) error {
	ctx, span := s.tracer.Start(ctx, "CreateUser")
	defer span.End()

	b, err := json.Marshal(toUserRecord(user))
	if err != nil {
		return err
	}

	claimed, err := s.client.SetNX(ctx, userEmailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return goerror.ErrConflict
	}

	if err := s.client.Set(ctx, userKey(user.ID), b, 0).Err(); err != nil {
		// release the index so the email is not burned by a half-written user
		if delErr := s.client.Del(ctx, userEmailKey(user.Email)).Err(); delErr != nil {
			slog.ErrorContext(ctx, "failed to release email index", "email", user.Email, "error", delErr)
		}
		return err
	}

	return nil
}

// GetUserByEmail resolves the email index and loads the user.
func (s *Redis) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := s.tracer.Start(ctx, "GetUserByEmail")
	defer span.End()

	id, err := s.client.Get(ctx, userEmailKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID loads a user by id.
func (s *Redis) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	ctx, span := s.tracer.Start(ctx, "GetUserByID")
	defer span.End()

	b, err := s.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec userRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}

	return rec.toEntity(), nil
}

// GetTwoFactor loads the two-factor record for a user.
func (s *Redis) GetTwoFactor(ctx context.Context, userID int64) (*entity.TwoFactorRecord, error) {
	ctx, span := s.tracer.Start(ctx, "GetTwoFactor")
	defer span.End()

	b, err := s.client.Get(ctx, twoFactorKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec twoFactorRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}

	return rec.toEntity(), nil
}

// SaveTwoFactor writes the record, replacing any previous configuration.
func (s *Redis) SaveTwoFactor(ctx context.Context, rec entity.TwoFactorRecord) error {
	ctx, span := s.tracer.Start(ctx, "SaveTwoFactor")
	defer span.End()

	b, err := json.Marshal(toTwoFactorRecord(rec))
	if err != nil {
		return err
	}

	return s.client.Set(ctx, twoFactorKey(rec.UserID), b, 0).Err()
}

// DeleteTwoFactor removes the record for a user.
func (s *Redis) DeleteTwoFactor(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "DeleteTwoFactor")
	defer span.End()

	return s.client.Del(ctx, twoFactorKey(userID)).Err()
}

// MutateTwoFactor runs fn against the user's current record inside an
// optimistic WATCH transaction and persists the result. Concurrent mutations
// of the same record conflict and are retried; fn must therefore be free of
// side effects beyond the record itself. Returns goerror.ErrNotFound when no
// record exists, and fn's error unchanged when fn rejects the mutation.
func (s *Redis) MutateTwoFactor(ctx context.Context, userID int64, fn func(rec *entity.TwoFactorRecord) error) error {
	ctx, span := s.tracer.Start(ctx, "MutateTwoFactor")
	defer span.End()

	key := twoFactorKey(userID)
	backoff := retry.WithMaxRetries(mutateMaxRetries, retry.NewFibonacci(10*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			b, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return goerror.ErrNotFound
			}
			if err != nil {
				return err
			}

			var rec twoFactorRecord
			if err := json.Unmarshal(b, &rec); err != nil {
				return err
			}

			ent := rec.toEntity()
			if err := fn(ent); err != nil {
				return err
			}

			out, err := json.Marshal(toTwoFactorRecord(*ent))
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			return retry.RetryableError(err)
		}
		return err
	})
}
