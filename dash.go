package osd

import "math"

// effectiveDashIntervals normalizes a dash interval list: negative lengths
// are made positive and an odd-length list is doubled so on/off pairs
// alternate cleanly. Returns nil for patterns that cannot produce dashes.
func effectiveDashIntervals(intervals []float64) []float64 {
	if len(intervals) == 0 {
		return nil
	}
	n := len(intervals)
	if n%2 != 0 {
		n *= 2
	}
	out := make([]float64, n)
	total := 0.0
	anyOn := false
	for i := range out {
		v := math.Abs(intervals[i%len(intervals)])
		out[i] = v
		total += v
		if i%2 == 0 && v > 0 {
			anyOn = true
		}
	}
	if total <= 0 || !anyOn {
		return nil
	}
	return out
}

// dashWalker tracks position within a cycling dash pattern.
type dashWalker struct {
	intervals []float64
	index     int     // current interval
	remaining float64 // length left in current interval
}

func newDashWalker(intervals []float64, phase float64) dashWalker {
	total := 0.0
	for _, v := range intervals {
		total += v
	}
	phase = math.Mod(phase, total)
	if phase < 0 {
		phase += total
	}
	w := dashWalker{intervals: intervals, index: 0, remaining: intervals[0]}
	for phase > 0 {
		if phase < w.remaining {
			w.remaining -= phase
			break
		}
		phase -= w.remaining
		w.advance()
	}
	return w
}

func (w *dashWalker) on() bool {
	return w.index%2 == 0
}

func (w *dashWalker) advance() {
	w.index = (w.index + 1) % len(w.intervals)
	w.remaining = w.intervals[w.index]
	// Skip zero-length intervals so the walker always makes progress.
	for w.remaining <= 0 {
		w.index = (w.index + 1) % len(w.intervals)
		w.remaining = w.intervals[w.index]
	}
}

// applyDash splits flattened subpaths into the "on" runs of the dash
// pattern, walking cumulative arc length. Every resulting run is an open
// polyline; the pattern cycles across subpath boundaries independently
// (each subpath restarts at the phase offset, matching common canvas
// semantics).
func applyDash(subpaths []subpath, intervals []float64, phase float64) []subpath {
	eff := effectiveDashIntervals(intervals)
	if eff == nil {
		return subpaths
	}

	var out []subpath
	for _, sp := range subpaths {
		pts := sp.points
		if len(pts) < 2 {
			continue
		}
		w := newDashWalker(eff, phase)
		var run []Point
		if w.on() {
			run = append(run, pts[0])
		}

		for i := 0; i+1 < len(pts); i++ {
			p0, p1 := pts[i], pts[i+1]
			segLen := p0.Distance(p1)
			pos := 0.0
			for segLen-pos > w.remaining {
				pos += w.remaining
				cut := p0.Lerp(p1, pos/segLen)
				if w.on() {
					// Dash ends here.
					run = append(run, cut)
					if len(run) >= 2 {
						out = append(out, subpath{points: run})
					}
					run = nil
				} else {
					// Gap ends, dash begins.
					run = append(run, cut)
				}
				w.advance()
			}
			w.remaining -= segLen - pos
			if w.on() {
				run = append(run, p1)
			}
		}
		if len(run) >= 2 {
			out = append(out, subpath{points: run})
		}
	}
	return out
}
