package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// sampler lets num of every den calls through. A zero ratio lets everything through.
type sampler struct {
	ratio atomic.Uint64 // num<<32 | den
	calls atomic.Uint64
}

func (s *sampler) set(num, den int) {
	if num <= 0 || den <= 0 {
		s.ratio.Store(0)
		return
	}
	num = min(num, den)
	s.ratio.Store(uint64(num)<<32 | uint64(den))
}

func (s *sampler) allow() bool {
	r := s.ratio.Load()
	num, den := r>>32, r&0xffffffff
	if num == 0 || den == 0 {
		return true
	}
	return (s.calls.Add(1)-1)%den < num
}

// parseRatio accepts "n/d", a bare "d" meaning 1/d, or "0"/"off" to disable.
// ok is false for unparsable input.
func parseRatio(raw string) (num, den int, ok bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "0", "off", "none":
		return 0, 0, true
	}
	if n, d, found := strings.Cut(raw, "/"); found {
		num, err1 := strconv.Atoi(strings.TrimSpace(n))
		den, err2 := strconv.Atoi(strings.TrimSpace(d))
		if err1 != nil || err2 != nil || num < 0 || den <= 0 {
			return 0, 0, false
		}
		return num, den, true
	}
	d, err := strconv.Atoi(raw)
	if err != nil || d < 0 {
		return 0, 0, false
	}
	if d == 0 {
		return 0, 0, true
	}
	return 1, d, true
}
