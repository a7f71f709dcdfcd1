package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_SameHostSerialised(t *testing.T) {
	l := New(100 * time.Millisecond)

	start := time.Now()
	var elapsed [3]time.Duration
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		i := i
		go func() {
			defer wg.Done()
			l.WaitFor("https://a.example.com/x")
			elapsed[i] = time.Since(start)
		}()
	}
	wg.Wait()

	// Regardless of goroutine scheduling order, the three completion times
	// must be spaced roughly 0, interval, 2*interval apart.
	sorted := elapsed[:]
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] < sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	assert.Less(t, sorted[0], 60*time.Millisecond)
	assert.InDelta(t, 100*time.Millisecond, sorted[1], float64(60*time.Millisecond))
	assert.InDelta(t, 200*time.Millisecond, sorted[2], float64(60*time.Millisecond))
}

func TestLimiter_DifferentHostsDoNotBlock(t *testing.T) {
	l := New(200 * time.Millisecond)

	start := time.Now()
	var wg sync.WaitGroup
	var elapsedB time.Duration
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.WaitFor("https://a.example.com/x")
	}()
	go func() {
		defer wg.Done()
		l.WaitFor("https://b.example.com/y")
		elapsedB = time.Since(start)
	}()
	wg.Wait()

	assert.Less(t, elapsedB, 100*time.Millisecond)
}

func TestLimiter_InvalidURLNotLimited(t *testing.T) {
	l := New(time.Second)
	start := time.Now()
	l.WaitFor("not a url :::")
	l.WaitFor("not a url :::")
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_Reset(t *testing.T) {
	l := New(time.Hour)
	l.WaitFor("https://a.example.com/x")
	l.Reset()
	start := time.Now()
	l.WaitFor("https://a.example.com/x")
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
