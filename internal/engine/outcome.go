package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Outcome — единица результата хендлера: что делали, чем кончилось, сколько строк.
type Outcome struct {
	Context string // "Requests.Queued", "Stops.Pending", ...
	State   string // "submitted", "rejected", "expired", "requeued", ...
	Success bool
	Count   int
}

// Summary агрегирует Outcome'ы цикла по ключу (context, state, success).
type Summary struct {
	counts map[outcomeKey]int
}

type outcomeKey struct {
	context string
	state   string
	success bool
}

func NewSummary() *Summary {
	return &Summary{counts: make(map[outcomeKey]int)}
}

func (s *Summary) Add(outcomes ...Outcome) {
	for _, o := range outcomes {
		if o.Count == 0 {
			continue
		}
		s.counts[outcomeKey{o.Context, o.State, o.Success}] += o.Count
	}
}

// Failures — суммарное число неуспешных исходов; цикл никогда не падает,
// ошибки хендлеров видны только здесь.
func (s *Summary) Failures() int {
	total := 0
	for key, n := range s.counts {
		if !key.success {
			total += n
		}
	}
	return total
}

func (s *Summary) Total() int {
	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

func (s *Summary) Count(context, state string, success bool) int {
	return s.counts[outcomeKey{context, state, success}]
}

func (s *Summary) String() string {
	if len(s.counts) == 0 {
		return "idle"
	}

	lines := make([]string, 0, len(s.counts))
	for key, n := range s.counts {
		mark := "ok"
		if !key.success {
			mark = "fail"
		}
		lines = append(lines, fmt.Sprintf("%s/%s=%d(%s)", key.context, key.state, n, mark))
	}
	sort.Strings(lines)
	return strings.Join(lines, " ")
}
