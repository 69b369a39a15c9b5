package throttle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestNilControllerAllowsEverything(t *testing.T) {
	var c *Controller
	release, err := c.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()

	r := strings.NewReader("abc")
	if got := c.Reader(context.Background(), r); got != io.Reader(r) {
		t.Error("nil controller should not wrap readers")
	}
}

func TestAcquireBlocksAtLimit(t *testing.T) {
	c := New(Config{MaxTransfers: 1})
	release, err := c.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second Acquire err = %v, want deadline exceeded", err)
	}

	release()
	release2, err := c.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()
}

func TestReaderLimitsRate(t *testing.T) {
	c := New(Config{IOLimitBytesPerSec: 1000})
	data := bytes.Repeat([]byte("x"), 1500)

	start := time.Now()
	got, err := io.ReadAll(c.Reader(context.Background(), bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("data changed while throttled")
	}
	// The first 1000 bytes ride the burst, the rest needs about half a second.
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Errorf("read finished in %v, expected throttling", elapsed)
	}
}

func TestReaderStopsOnCancel(t *testing.T) {
	c := New(Config{IOLimitBytesPerSec: 10})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := io.ReadAll(c.Reader(ctx, strings.NewReader(strings.Repeat("y", 100))))
	if err == nil {
		t.Error("expected error after cancel")
	}
}
