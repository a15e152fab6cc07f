package feed

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestSyntheticAscendingTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gen, err := NewSynthetic(SyntheticConfig{
		Start:     start,
		Interval:  time.Minute,
		BasePrice: 100,
		Seed:      7,
	})
	if err != nil {
		t.Fatalf("new synthetic: %v", err)
	}
	prev := start.Add(-time.Minute)
	for i := 0; i < 50; i++ {
		bar, err := gen.Next(context.Background())
		if err != nil {
			t.Fatalf("next #%d: %v", i, err)
		}
		if !bar.Time.After(prev) {
			t.Fatalf("bar #%d time %v not after %v", i, bar.Time, prev)
		}
		if bar.Low > bar.High {
			t.Fatalf("bar #%d low %v > high %v", i, bar.Low, bar.High)
		}
		if bar.Close <= 0 {
			t.Fatalf("bar #%d close %v <= 0", i, bar.Close)
		}
		prev = bar.Time
	}
}

func TestSyntheticDeterministicSeed(t *testing.T) {
	cfg := SyntheticConfig{
		Start:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:  time.Second,
		BasePrice: 100,
		Seed:      42,
	}
	a, err := NewSynthetic(cfg)
	if err != nil {
		t.Fatalf("new a: %v", err)
	}
	b, err := NewSynthetic(cfg)
	if err != nil {
		t.Fatalf("new b: %v", err)
	}
	for i := 0; i < 20; i++ {
		ba, _ := a.Next(context.Background())
		bb, _ := b.Next(context.Background())
		if ba != bb {
			t.Fatalf("bar #%d diverged: %+v vs %+v", i, ba, bb)
		}
	}
}

func TestLimitEndsWithEOF(t *testing.T) {
	gen, err := NewSynthetic(SyntheticConfig{Seed: 1})
	if err != nil {
		t.Fatalf("new synthetic: %v", err)
	}
	limited := Limit(gen, 3)
	for i := 0; i < 3; i++ {
		if _, err := limited.Next(context.Background()); err != nil {
			t.Fatalf("next #%d: %v", i, err)
		}
	}
	if _, err := limited.Next(context.Background()); err != io.EOF {
		t.Fatalf("next after limit = %v, want io.EOF", err)
	}
}
