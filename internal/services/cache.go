package services

import "time"

// Cache stores short-lived response bodies. fiber.Storage implementations,
// such as the Redis and memory storages, satisfy it.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}
