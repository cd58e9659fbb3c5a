// Package cache: необязательное подключение к Redis.
// Без REDIS_ADDR лимитеры работают в памяти процесса.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect возвращает nil-клиент, если адрес пуст или Redis недоступен.
func Connect(ctx context.Context, addr string, log *zap.Logger) *redis.Client {
	if addr == "" {
		log.Info("REDIS_ADDR не задан, лимиты запросов хранятся в памяти")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("не удалось подключиться к Redis, работаем без него", zap.String("addr", addr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	log.Info("подключились к Redis", zap.String("addr", addr))
	return rdb
}

// Storage реализует fiber.Storage поверх go-redis. Все ключи живут под prefix.
type Storage struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

func NewStorage(rdb *redis.Client, prefix string) *Storage {
	return &Storage{rdb: rdb, prefix: prefix, timeout: time.Second}
}

func (s *Storage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get возвращает nil, nil для отсутствующего ключа, как требует fiber.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	val, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.rdb.Set(ctx, s.prefix+key, val, exp).Err()
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

// Reset удаляет только ключи с нашим префиксом.
func (s *Storage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

// Close не закрывает общий клиент: им владеет main.
func (s *Storage) Close() error { return nil }
