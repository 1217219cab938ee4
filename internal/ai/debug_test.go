package ai

import (
	"sync"
	"testing"
)

func TestEnableDebugLogging(t *testing.T) {
	defer EnableDebugLogging(false)

	for _, tt := range []struct {
		name    string
		enabled bool
	}{
		{"enable", true},
		{"disable", false},
		{"enable again", true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			EnableDebugLogging(tt.enabled)
			if got := IsDebugEnabled(); got != tt.enabled {
				t.Errorf("IsDebugEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestIsDebugEnabled_ConcurrentToggle(t *testing.T) {
	defer EnableDebugLogging(false)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 500 {
				if i == 0 {
					EnableDebugLogging(j%2 == 0)
					continue
				}
				_ = IsDebugEnabled()
			}
		}()
	}
	wg.Wait()
}
