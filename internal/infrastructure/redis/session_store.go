// Package redis persiste las sesiones de la consola en Redis.
package redis

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionStore)(nil)

const (
	keyPrefix = "console:session:"
	nonceSize = 24
)

// SessionStore sesiones en Redis con TTL. El access token del backend se guarda sellado con
// secretbox; el resto del payload va en JSON plano.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
	key    [32]byte
}

type sessionPayload struct {
	User        entity.User `json:"user"`
	SealedToken []byte      `json:"sealed_token"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// NewSessionStore construye el store. La llave de sellado se deriva de secret.
func NewSessionStore(client *goredis.Client, secret string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		key:    sha256.Sum256([]byte(secret)),
	}
}

// NewClient cliente Redis desde dirección, password y base.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
}

func redisKey(id string) string {
	return keyPrefix + id
}

// Save guarda (o reemplaza) la sesión y renueva su TTL.
func (s *SessionStore) Save(ctx context.Context, sess *entity.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("%w: sesión sin id", domain.ErrInvalidInput)
	}
	sealed, err := s.seal([]byte(sess.AccessToken))
	if err != nil {
		return err
	}
	data, err := json.Marshal(sessionPayload{
		User:        sess.User,
		SealedToken: sealed,
		CreatedAt:   sess.CreatedAt,
		ExpiresAt:   sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set sesión: %w", err)
	}
	return nil
}

// Get lee la sesión. Devuelve domain.ErrSessionExpired si no existe o no se puede abrir.
func (s *SessionStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrSessionExpired
		}
		return nil, fmt.Errorf("redis get sesión: %w", err)
	}
	var stored sessionPayload
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("deserializar sesión: %w", err)
	}
	token, ok := s.open(stored.SealedToken)
	if !ok {
		// Sellada con otra llave (rotación de SESSION_SECRET): se trata como vencida.
		return nil, domain.ErrSessionExpired
	}
	return &entity.Session{
		ID:          id,
		User:        stored.User,
		AccessToken: string(token),
		CreatedAt:   stored.CreatedAt,
		ExpiresAt:   stored.ExpiresAt,
	}, nil
}

// Delete elimina la sesión. Borrar una sesión inexistente no es error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis del sesión: %w", err)
	}
	return nil
}

func (s *SessionStore) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generar nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s *SessionStore) open(sealed []byte) ([]byte, bool) {
	if len(sealed) < nonceSize {
		return nil, false
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	return secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
}
