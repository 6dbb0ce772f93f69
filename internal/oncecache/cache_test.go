package oncecache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCache_BuildsOnce(t *testing.T) {
	var c Cache[int]
	var calls int32

	var wg sync.WaitGroup
	results := make([]int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(func() (int, error) {
				atomic.AddInt32(&calls, 1)
				return 7, nil
			})
			if err != nil {
				t.Errorf("Get() error = %v", err)
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("build function called %d times, want 1", calls)
	}
	for i, v := range results {
		if v != 7 {
			t.Errorf("results[%d] = %d, want 7", i, v)
		}
	}
}

func TestCache_FailedBuildRetries(t *testing.T) {
	var c Cache[int]
	wantErr := errors.New("boom")

	_, err := c.Get(func() (int, error) { return 0, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("Get() error = %v, want %v", err, wantErr)
	}

	v, err := c.Get(func() (int, error) { return 9, nil })
	if err != nil {
		t.Fatalf("Get() error = %v, want nil on retry", err)
	}
	if v != 9 {
		t.Errorf("Get() = %d, want 9", v)
	}
}

func TestCache_Reset(t *testing.T) {
	var c Cache[int]
	v, err := c.Get(func() (int, error) { return 1, nil })
	if err != nil || v != 1 {
		t.Fatalf("Get() = (%d, %v), want (1, nil)", v, err)
	}

	c.Reset()

	v, err = c.Get(func() (int, error) { return 2, nil })
	if err != nil || v != 2 {
		t.Fatalf("Get() after Reset = (%d, %v), want (2, nil)", v, err)
	}
}
