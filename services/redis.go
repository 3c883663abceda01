package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"passkey_auth_ms/config"
	"passkey_auth_ms/domain"
	"passkey_auth_ms/webauthn"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

type IRedisService interface {
	StoreLoginChallenge(challenge []byte) error
	TakeLoginChallenge(key string) ([]byte, error)
	StoreLoginSession(session *domain.LoginSession) error
	GetLoginSession(sessionId string) (*domain.LoginSession, error)
	DeleteLoginSession(sessionId string) error
}

type RedisService struct {
	rdb *redis.Client
}

func NewRedisService(rdb *redis.Client) IRedisService {
	return &RedisService{rdb: rdb}
}

// ChallengeKey derives the store key for an issued challenge from its
// raw bytes. The same derivation is applied to the challenge echoed in
// client data, so lookups are independent of the wire encoding variant.
func ChallengeKey(challenge []byte) string {
	return base64.RawURLEncoding.EncodeToString(challenge)
}

func (s *RedisService) StoreLoginChallenge(challenge []byte) error {
	ttl := time.Duration(config.Conf.Application.WebAuthn.ChallengeValidityInSeconds) * time.Second
	err := s.rdb.Set(ctx, fmt.Sprintf("webauthn:login:%s", ChallengeKey(challenge)), challenge, ttl).Err()
	if err != nil {
		return &webauthn.StorageError{Op: "challenge store", Err: err}
	}
	return nil
}

// TakeLoginChallenge consumes a challenge. GETDEL makes the take
// atomic: only one of two concurrent ceremonies presenting the same
// challenge can ever receive it, the other gets challenge_not_found.
func (s *RedisService) TakeLoginChallenge(key string) ([]byte, error) {
	val, err := s.rdb.GetDel(ctx, fmt.Sprintf("webauthn:login:%s", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, webauthn.ErrChallengeNotFound
	}
	if err != nil {
		return nil, &webauthn.StorageError{Op: "challenge take", Err: err}
	}
	return val, nil
}

func (s *RedisService) StoreLoginSession(session *domain.LoginSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Duration(config.Conf.Application.Security.SessionValidityInSeconds) * time.Second
	if err := s.rdb.Set(ctx, fmt.Sprintf("session:%s", session.ID), data, ttl).Err(); err != nil {
		return &webauthn.StorageError{Op: "session store", Err: err}
	}
	return nil
}

func (s *RedisService) GetLoginSession(sessionId string) (*domain.LoginSession, error) {
	val, err := s.rdb.Get(ctx, fmt.Sprintf("session:%s", sessionId)).Result()
	if err != nil {
		return nil, err
	}
	var session domain.LoginSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisService) DeleteLoginSession(sessionId string) error {
	return s.rdb.Del(ctx, fmt.Sprintf("session:%s", sessionId)).Err()
}
