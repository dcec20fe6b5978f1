package individuallending

import (
	"sync"
)

// ScheduleStore holds the current repayment schedule per case. Aggregates are
// immutable, so readers share period slices without locking once returned;
// recomputation swaps in a whole new schedule.
type ScheduleStore struct {
	mu        sync.RWMutex
	schedules map[string][]RepaymentPeriod
}

func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{schedules: make(map[string][]RepaymentPeriod)}
}

func scheduleKey(productIdentifier, caseIdentifier string) string {
	return productIdentifier + "." + caseIdentifier
}

// Replace installs a freshly planned schedule, discarding the previous one.
func (s *ScheduleStore) Replace(productIdentifier, caseIdentifier string, periods []RepaymentPeriod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[scheduleKey(productIdentifier, caseIdentifier)] = periods
}

// Get returns the current schedule for a case, or nil when none has been
// computed yet.
func (s *ScheduleStore) Get(productIdentifier, caseIdentifier string) []RepaymentPeriod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedules[scheduleKey(productIdentifier, caseIdentifier)]
}
