package config

import "fmt"

type CacheKeyStruct struct {
	prefix string
}

func NewCacheKeyStruct(prefix string) *CacheKeyStruct {
	return &CacheKeyStruct{prefix: prefix}
}

// ExamEventsChannel returns the Redis PubSub channel session lifecycle events are published on.
func (r *CacheKeyStruct) ExamEventsChannel() string {
	return fmt.Sprintf("%s:events", r.prefix)
}

// ResultKey returns the key the latest scored result of a session is kept under.
func (r *CacheKeyStruct) ResultKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s:result", r.prefix, sessionID)
}

var CacheKey = NewCacheKeyStruct("exam")
