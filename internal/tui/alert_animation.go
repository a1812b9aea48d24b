package tui

import "time"

// animation interpolates a box's vertical offset (percent of its height) and
// opacity. Remaining time is captured once at start and counted down by one
// frame per step; the wall clock is never consulted.
type animation struct {
	total     time.Duration
	remaining time.Duration
	frame     time.Duration

	fromOffset, toOffset   float64
	fromOpacity, toOpacity float64
}

func newAnimation(total, frame time.Duration, fromOffset, toOffset, fromOpacity, toOpacity float64) *animation {
	if frame <= 0 {
		frame = total
	}
	if total < 0 {
		total = 0
	}
	return &animation{
		total:       total,
		remaining:   total,
		frame:       frame,
		fromOffset:  fromOffset,
		toOffset:    toOffset,
		fromOpacity: fromOpacity,
		toOpacity:   toOpacity,
	}
}

// entranceAnimation slides a box up into place while fading it in.
func entranceAnimation(total, frame time.Duration, endOpacity float64) *animation {
	return newAnimation(total, frame, 100, 0, 0, endOpacity)
}

// exitAnimation slides a box down out of view while fading it out, starting
// wherever the box currently is.
func exitAnimation(total, frame time.Duration, startOffset, startOpacity float64) *animation {
	return newAnimation(total, frame, startOffset, 100, startOpacity, 0)
}

func (a *animation) progress() float64 {
	if a.total <= 0 {
		return 1
	}
	p := 1 - float64(a.remaining)/float64(a.total)
	return min(max(p, 0), 1)
}

func (a *animation) offset() float64 {
	return a.fromOffset + (a.toOffset-a.fromOffset)*a.progress()
}

func (a *animation) opacity() float64 {
	return a.fromOpacity + (a.toOpacity-a.fromOpacity)*a.progress()
}

// step advances one frame and reports whether the animation has finished.
func (a *animation) step() bool {
	if a.remaining > 0 {
		a.remaining -= a.frame
		if a.remaining < 0 {
			a.remaining = 0
		}
	}
	return a.done()
}

func (a *animation) done() bool {
	return a.remaining <= 0
}
