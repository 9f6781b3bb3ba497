package follower

// actionRing is a fixed-capacity log of the most recent chosen actions, used
// only for thrashing detection. Stop and Error are never recorded.
type actionRing struct {
	buf  []Action
	head int
	size int
}

func newActionRing(capacity int) *actionRing {
	if capacity < 1 {
		capacity = 1
	}
	return &actionRing{buf: make([]Action, capacity)}
}

func (r *actionRing) push(a Action) {
	r.buf[r.head] = a
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *actionRing) clear() {
	r.head = 0
	r.size = 0
}

// at returns the i-th most recent action; at(0) is the newest.
func (r *actionRing) at(i int) Action {
	idx := r.head - 1 - i
	for idx < 0 {
		idx += len(r.buf)
	}
	return r.buf[idx]
}

// trailingAlternation returns the length of the newest run of strictly
// alternating Left/Right actions, with no intervening Forward. An optional
// tentative action is treated as the newest entry.
func (r *actionRing) trailingAlternation(tentative Action, useTentative bool) int {
	run := 0
	var prev Action

	consider := func(a Action) bool {
		if a != ActionLeft && a != ActionRight {
			return false
		}
		if run > 0 && a == prev {
			return false
		}
		prev = a
		run++
		return true
	}

	if useTentative {
		if !consider(tentative) {
			return 0
		}
	}
	for i := 0; i < r.size; i++ {
		if !consider(r.at(i)) {
			break
		}
	}
	return run
}

// IsThrashing reports whether the trailing action history is an alternating
// Left/Right run at least ThrashingThreshold long. Detection runs regardless
// of whether correction is enabled.
func (f *Follower) IsThrashing() bool {
	return f.history.trailingAlternation(ActionStop, false) >= f.cfg.ThrashingThreshold
}

// wouldThrash reports whether committing tentative would complete an
// alternating run of at least ThrashingThreshold.
func (f *Follower) wouldThrash(tentative Action) bool {
	return f.history.trailingAlternation(tentative, true) >= f.cfg.ThrashingThreshold
}
