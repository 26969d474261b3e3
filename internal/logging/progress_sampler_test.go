package logging_test

import (
	"testing"

	"harmonia/internal/logging"
)

func TestProgressSamplerBuckets(t *testing.T) {
	s := logging.NewProgressSampler(10)

	if !s.ShouldLog(0, "fuzzy") {
		t.Fatal("first event should log")
	}
	if s.ShouldLog(3, "fuzzy") {
		t.Fatal("same bucket should be suppressed")
	}
	if !s.ShouldLog(12, "fuzzy") {
		t.Fatal("bucket crossing should log")
	}
	if !s.ShouldLog(100, "fuzzy") {
		t.Fatal("completion should log")
	}
}

func TestProgressSamplerStageChange(t *testing.T) {
	s := logging.NewProgressSampler(5)
	s.ShouldLog(50, "album")
	if !s.ShouldLog(1, "fuzzy") {
		t.Fatal("stage change should log even when percent drops")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := logging.NewProgressSampler(5)
	s.ShouldLog(90, "fuzzy")
	s.Reset()
	if !s.ShouldLog(1, "fuzzy") {
		t.Fatal("reset sampler should log again")
	}
}
