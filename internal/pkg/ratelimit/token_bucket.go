package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

type LimiterConfig struct {
	Capacity   int
	Rate       float64       // tokens/秒
	RefillRate time.Duration // 補充時間間隔
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity:   100,
		Rate:       1,
		RefillRate: time.Second,
	}
}

// PerMinute 每分鐘 n 次，允許一次用完
func PerMinute(n int) LimiterConfig {
	if n < 1 {
		n = 1
	}
	return LimiterConfig{
		Capacity:   n,
		Rate:       float64(n) / 60,
		RefillRate: time.Second,
	}
}

/*
請使用 defer 呼叫 Stop()
*/
type TokenBucket struct {
	LimiterConfig
	current      atomic.Int64
	lastRefilled atomic.Int64
	cancel       chan struct{}
	once         sync.Once //for close background
}

/*
請使用 defer 呼叫 Stop()
*/
func NewTokenBucket(config *LimiterConfig) *TokenBucket {
	t := &TokenBucket{
		cancel: make(chan struct{}),
	}

	if config != nil {
		t.LimiterConfig = *config
	} else {
		t.LimiterConfig = GetDefaultLimiterConfig()
	}
	if t.RefillRate <= 0 {
		t.RefillRate = time.Second
	}

	t.current.Store(int64(t.Capacity))
	t.lastRefilled.Store(time.Now().UnixNano())
	go t.background()
	return t
}

func (t *TokenBucket) Allow() bool {
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

// countNewTokens 不足一個 token 時回傳 0，lastRefilled 不前進
func (t *TokenBucket) countNewTokens(now int64) int64 {
	elapsed := time.Duration(now - t.lastRefilled.Load())
	return int64(elapsed.Seconds() * t.Rate)
}

func (t *TokenBucket) refill(now int64) {
	tokenToAdd := t.countNewTokens(now)
	if tokenToAdd <= 0 {
		return
	}
	for {
		current := t.current.Load()
		newTokens := current + tokenToAdd
		if newTokens > int64(t.Capacity) {
			newTokens = int64(t.Capacity)
		}
		if t.current.CompareAndSwap(current, newTokens) {
			t.lastRefilled.Store(now)
			return
		}
	}
}

func (t *TokenBucket) background() {
	ticker := time.NewTicker(t.RefillRate)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			t.refill(time.Now().UnixNano())
		}
	}
}

func (t *TokenBucket) Stop() {
	t.once.Do(func() {
		close(t.cancel)
	})
}

// KeyedLimiter 每個 key (例如 client ip) 各自一個 bucket
type KeyedLimiter struct {
	config  LimiterConfig
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	closed  bool
}

func NewKeyedLimiter(config LimiterConfig) *KeyedLimiter {
	return &KeyedLimiter{config: config, buckets: make(map[string]*TokenBucket)}
}

func (k *KeyedLimiter) Allow(key string) bool {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return false
	}
	bucket, ok := k.buckets[key]
	if !ok {
		bucket = NewTokenBucket(&k.config)
		k.buckets[key] = bucket
	}
	k.mu.Unlock()
	return bucket.Allow()
}

func (k *KeyedLimiter) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	for key, bucket := range k.buckets {
		bucket.Stop()
		delete(k.buckets, key)
	}
}
