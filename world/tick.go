package world

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// StartTicking drives the world at the given interval on its own goroutine,
// reading the viewpoint from view before each tick. It returns a stop
// function; closing the world stops the loop too. Manual Tick calls must not
// be mixed with a running loop.
func (w *World) StartTicking(interval time.Duration, view func() mgl64.Vec3) (stop func()) {
	if interval <= 0 {
		interval = time.Second / 20
	}
	done := make(chan struct{})
	go w.tickLoop(interval, view, done)
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (w *World) tickLoop(interval time.Duration, view func() mgl64.Vec3, done <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()

	last := time.Now()
	window, ticks := last, 0
	for {
		select {
		case <-done:
			return
		case <-w.closed:
			return
		case now := <-t.C:
			w.Tick(view(), now.Sub(last))
			last = now
			ticks++
			if elapsed := now.Sub(window); elapsed >= time.Second*5 {
				target := elapsed.Seconds() / interval.Seconds()
				if float64(ticks) < 0.8*target {
					w.log.Warn("world ticking behind schedule",
						"tps", float64(ticks)/elapsed.Seconds(),
						"target", 1/interval.Seconds(),
					)
				}
				window, ticks = now, 0
			}
		}
	}
}
