package clock

import (
	"pms/shared/timezone"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock in the application timezone.
type RealClock struct{}

func New() Clock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return timezone.Now()
}

type MockClock struct {
	mu          sync.RWMutex
	currentTime time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.currentTime
}

func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentTime = t
}

func (c *MockClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentTime = c.currentTime.Add(d)
}
