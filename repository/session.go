package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"main/model"
	"main/utils"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionRepo stores server-side sessions in Redis. The key TTL is the
// session lifetime, so expiry needs no sweeper.
type SessionRepo struct {
	Client *redis.Client
}

func GetSessionRepo(client *redis.Client) *SessionRepo {
	return &SessionRepo{Client: client}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (r *SessionRepo) CreateSession(ctx context.Context, session *model.Session) error {
	timer := utils.TrackDBOperation("insert", "sessions")
	defer timer.ObserveDuration()

	if session == nil || session.SessionID == "" || session.UserID == "" {
		utils.TrackError("session", "invalid_session_data")
		return fmt.Errorf("invalid session data: missing required fields")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session has already expired")
	}

	if err := r.Client.Set(ctx, sessionKey(session.SessionID), data, ttl).Err(); err != nil {
		utils.TrackError("session", "session_create_failed")
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// GetSession returns nil without error when the reference is unknown or
// expired.
func (r *SessionRepo) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	timer := utils.TrackDBOperation("find", "sessions")
	defer timer.ObserveDuration()

	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	data, err := r.Client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("session", "session_fetch_failed")
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_ = r.DeleteSession(ctx, sessionID)
		return nil, nil
	}

	return &session, nil
}

// DeleteSession invalidates a session reference. Deleting an absent key is
// a no-op, so the call is idempotent.
func (r *SessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	timer := utils.TrackDBOperation("delete", "sessions")
	defer timer.ObserveDuration()

	if err := r.Client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		utils.TrackError("session", "session_delete_failed")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
