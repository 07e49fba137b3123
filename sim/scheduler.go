package sim

import (
	"sort"
	"time"
)

// Scheduler is a keyed table of pending tasks. Each key has at most one
// pending due time; scheduling again replaces it. Whether a task is still
// wanted is decided by the caller when it comes due.
type Scheduler struct {
	tasks map[string]time.Time
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]time.Time)}
}

// At schedules key to come due at t.
func (s *Scheduler) At(key string, t time.Time) {
	s.tasks[key] = t
}

// Cancel drops the pending task for key and reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	_, ok := s.tasks[key]
	delete(s.tasks, key)
	return ok
}

func (s *Scheduler) Pending(key string) (time.Time, bool) {
	t, ok := s.tasks[key]
	return t, ok
}

func (s *Scheduler) Len() int { return len(s.tasks) }

// Due removes and returns every key due at or before now, ordered by due
// time and then key.
func (s *Scheduler) Due(now time.Time) []string {
	var keys []string
	for k, t := range s.tasks {
		if !t.After(now) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := s.tasks[keys[i]], s.tasks[keys[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		delete(s.tasks, k)
	}
	return keys
}
