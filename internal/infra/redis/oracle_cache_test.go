package redis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"advent-quiz-service/internal/validation"
)

type scriptedOracle struct {
	replies []string
	err     error
	calls   atomic.Int32
}

func (o *scriptedOracle) Judge(context.Context, string) (string, error) {
	n := int(o.calls.Add(1)) - 1
	if o.err != nil {
		return "", o.err
	}
	return o.replies[min(n, len(o.replies)-1)], nil
}

func TestOracleCacheMemoizesReplies(t *testing.T) {
	mr := runRedis(t)
	next := &scriptedOracle{replies: []string{`{"match":"yes","confidence":90}`}}
	cache := NewOracleCache(newClient(mr), next, "gemini-2.5-flash", time.Hour)
	prompt := validation.BuildPrompt("gran", "Spruce")

	for i := 0; i < 3; i++ {
		raw, err := cache.Judge(context.Background(), prompt)
		if err != nil || raw != `{"match":"yes","confidence":90}` {
			t.Fatalf("unexpected reply %q (%v)", raw, err)
		}
	}
	if next.calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls.Load())
	}

	keys := mr.Keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], "oracle:gemini-2.5-flash:") {
		t.Fatalf("unexpected cache keys %v", keys)
	}
	if ttl := mr.TTL(keys[0]); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	// a different prompt is a different entry
	_, _ = cache.Judge(context.Background(), validation.BuildPrompt("tall", "Spruce"))
	if next.calls.Load() != 2 {
		t.Fatalf("expected a second upstream call, got %d", next.calls.Load())
	}
}

func TestOracleCacheSkipsFailures(t *testing.T) {
	mr := runRedis(t)
	failing := &scriptedOracle{err: errors.New("quota exceeded")}
	cache := NewOracleCache(newClient(mr), failing, "m", time.Hour)

	if _, err := cache.Judge(context.Background(), "p"); err == nil {
		t.Fatalf("expected upstream error")
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("errors must not be cached: %v", mr.Keys())
	}

	garbled := &scriptedOracle{replies: []string{"sure, looks right", `{"match":"no","confidence":70}`}}
	cache = NewOracleCache(newClient(mr), garbled, "m", time.Hour)
	raw, err := cache.Judge(context.Background(), "p")
	if err != nil || raw != "sure, looks right" {
		t.Fatalf("malformed reply should pass through, got %q (%v)", raw, err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("malformed replies must not be cached: %v", mr.Keys())
	}
	raw, _ = cache.Judge(context.Background(), "p")
	if raw != `{"match":"no","confidence":70}` || garbled.calls.Load() != 2 {
		t.Fatalf("expected a fresh upstream call, got %q calls=%d", raw, garbled.calls.Load())
	}
}

func TestOracleCacheFeedsChecker(t *testing.T) {
	mr := runRedis(t)
	next := &scriptedOracle{replies: []string{`{"match":"yes","confidence":88,"reasoning":"gran is spruce"}`}}
	checker := validation.NewChecker(validation.MustRegistry(nil), NewOracleCache(newClient(mr), next, "m", time.Hour),
		validation.CheckerConfig{OracleEnabled: true})

	for i := 0; i < 2; i++ {
		verdict := checker.Check(context.Background(), "gran", "Spruce", 3)
		if !verdict.IsCorrect || verdict.Method != validation.MethodAI || verdict.Confidence != 88 {
			t.Fatalf("unexpected verdict %+v", verdict)
		}
	}
	if next.calls.Load() != 1 {
		t.Fatalf("expected cached second check, calls=%d", next.calls.Load())
	}
}

type slowOracle struct {
	delay time.Duration
	reply string
	calls atomic.Int32
}

func (o *slowOracle) Judge(ctx context.Context, _ string) (string, error) {
	o.calls.Add(1)
	select {
	case <-time.After(o.delay):
		return o.reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestOracleCacheCancelledLeaderDoesNotFailFollowers(t *testing.T) {
	mr := runRedis(t)
	next := &slowOracle{delay: 200 * time.Millisecond, reply: `{"match":"yes","confidence":91}`}
	cache := NewOracleCache(newClient(mr), next, "m", time.Hour).WithCallTimeout(5 * time.Second)
	prompt := validation.BuildPrompt("gran", "Spruce")

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := cache.Judge(leaderCtx, prompt)
		leaderErr <- err
	}()

	// let the leader start the upstream call before the follower joins
	deadline := time.Now().Add(time.Second)
	for next.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	type reply struct {
		raw string
		err error
	}
	follower := make(chan reply, 1)
	go func() {
		raw, err := cache.Judge(context.Background(), prompt)
		follower <- reply{raw, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected leader to see its own cancellation, got %v", err)
	}
	got := <-follower
	if got.err != nil || got.raw != `{"match":"yes","confidence":91}` {
		t.Fatalf("follower should get the shared reply, got %q (%v)", got.raw, got.err)
	}
	if next.calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls.Load())
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected the shared reply to be cached, keys=%v", mr.Keys())
	}
}

func TestOracleCacheBoundsSharedCall(t *testing.T) {
	mr := runRedis(t)
	next := &slowOracle{delay: time.Second, reply: `{"match":"yes","confidence":91}`}
	cache := NewOracleCache(newClient(mr), next, "m", time.Hour).WithCallTimeout(30 * time.Millisecond)

	_, err := cache.Judge(context.Background(), "p")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected call timeout, got %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("timed out calls must not be cached: %v", mr.Keys())
	}
}
