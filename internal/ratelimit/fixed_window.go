package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count     int
	startedAt time.Time
}

/*
FixedWindow 單機用, 每個 key 一個視窗
會有突刺問題: 視窗交界處最多放行兩倍 Capacity
*/
type FixedWindow struct {
	LimiterConfig
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

var _ ILimiter = (*FixedWindow)(nil)

func NewFixedWindow(config LimiterConfig) *FixedWindow {
	return &FixedWindow{
		LimiterConfig: config.withDefaults(),
		windows:       make(map[string]*window),
		now:           time.Now,
	}
}

func (w *FixedWindow) Allow(_ context.Context, key string) (bool, error) {
	current := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sweep(current)
	win, ok := w.windows[key]
	if !ok || current.Sub(win.startedAt) >= w.Window {
		win = &window{startedAt: current}
		w.windows[key] = win
	}
	if win.count+1 > w.Capacity {
		return false, nil
	}
	win.count++
	return true, nil
}

// sweep 清掉過期的視窗, 避免 key 無限增加
func (w *FixedWindow) sweep(current time.Time) {
	if current.Sub(w.lastSweep) < w.Window {
		return
	}
	for key, win := range w.windows {
		if current.Sub(win.startedAt) >= w.Window {
			delete(w.windows, key)
		}
	}
	w.lastSweep = current
}
