package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// ExamKey is the cache key of an exam with its questions
func ExamKey(examID uint) string {
	return fmt.Sprintf("id:%d", examID)
}

// ResultKey is the cache key of the current result of one learner for one exam
func ResultKey(examID uint, learnerID string) string {
	return fmt.Sprintf("exam:%d:learner:%s", examID, learnerID)
}

// StatsKey is the cache key of an exam's result aggregates
func StatsKey(examID uint) string {
	return fmt.Sprintf("exam:%d", examID)
}

// InvalidateExamCache drops the exam entry and everything derived from its results
func InvalidateExamCache(ctx context.Context, cm *CacheManager, examID uint) {
	SafeDelete(ctx, cm.Exam, ExamKey(examID))
	SafeDelete(ctx, cm.Stats, StatsKey(examID))
	SafeInvalidatePattern(ctx, cm.Result, fmt.Sprintf("exam:%d:*", examID))
}

// InvalidateResultCache drops one learner's result and the exam aggregates
func InvalidateResultCache(ctx context.Context, cm *CacheManager, examID uint, learnerID string) {
	SafeDelete(ctx, cm.Result, ResultKey(examID, learnerID))
	SafeDelete(ctx, cm.Stats, StatsKey(examID))
}
