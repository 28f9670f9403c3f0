package assistantService

import (
	assistantRepository "PabrikGolang/internal/api/assistant/repository"
	redisPkg "PabrikGolang/pkg/redis"
	"PabrikGolang/pkg/toolkit"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

func toolCacheKey(sessionID, toolName, paramsHash string) string {
	return fmt.Sprintf("toolcache:%s:%s:%s", sessionID, toolName, paramsHash)
}

// lookupCachedResult checks whether the identical call already ran in this
// session. The Redis cache is consulted first; the recent tool call records
// back it up so an evicted entry still counts as a repeat. Either store
// failing only disables the shortcut.
func (s *assistantService) lookupCachedResult(ctx context.Context, client assistantRepository.Client, sessionID, toolName, paramsHash string) (*toolkit.ToolResult, bool) {
	key := toolCacheKey(sessionID, toolName, paramsHash)

	payload, err := s.redis.GetToolResult(ctx, key)
	if err == nil && payload != "" {
		var result toolkit.ToolResult
		if unmarshalErr := json.Unmarshal([]byte(payload), &result); unmarshalErr == nil {
			if extendErr := s.redis.ExtendToolResult(ctx, key, s.cacheTTL); extendErr != nil {
				s.log.WithFields(logrus.Fields{
					"key":   key,
					"error": extendErr.Error(),
				}).Debug("Tool cache TTL extend err")
			}
			return &result, true
		}
	} else if err != nil && !errors.Is(err, redisPkg.ErrCacheMiss) {
		s.log.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Tool cache lookup err")
	}

	count, err := client.ToolCalls.CountRecentCalls(ctx, sessionID, toolName, paramsHash, s.recencyWindow)
	if err != nil {
		return nil, false
	}
	if count > 0 {
		return nil, true
	}

	return nil, false
}

// cacheResult stores a successful tool result for the session. Failures are
// logged and swallowed: caching never fails the call it serves.
func (s *assistantService) cacheResult(ctx context.Context, sessionID, toolName, paramsHash string, result toolkit.ToolResult) {
	if !result.Success {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}

	key := toolCacheKey(sessionID, toolName, paramsHash)
	if err := s.redis.SetToolResult(ctx, key, string(payload), s.cacheTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Tool cache store err")
	}
}
