package algorithm

import (
	"container/heap"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

// levelQueue hands out gate ids lowest level first, so a gate is only
// evaluated once every gate feeding it has settled.
type levelQueue struct {
	gates  []*circuit.Gate
	ids    []int
	queued []bool
}

func newLevelQueue(c *circuit.Circuit) *levelQueue {
	return &levelQueue{
		gates:  c.Gates,
		ids:    make([]int, 0, len(c.Gates)),
		queued: make([]bool, len(c.Gates)),
	}
}

func (q *levelQueue) Len() int { return len(q.ids) }

func (q *levelQueue) Less(i, j int) bool {
	a, b := q.gates[q.ids[i]], q.gates[q.ids[j]]
	if a.Level != b.Level {
		return a.Level < b.Level
	}
	return a.ID < b.ID
}

func (q *levelQueue) Swap(i, j int) { q.ids[i], q.ids[j] = q.ids[j], q.ids[i] }

func (q *levelQueue) Push(x any) { q.ids = append(q.ids, x.(int)) }

func (q *levelQueue) Pop() any {
	n := len(q.ids)
	id := q.ids[n-1]
	q.ids = q.ids[:n-1]
	return id
}

// push enqueues id unless it was queued before since the last reset.
func (q *levelQueue) push(id int) {
	if q.queued[id] {
		return
	}
	q.queued[id] = true
	heap.Push(q, id)
}

func (q *levelQueue) pop() int {
	return heap.Pop(q).(int)
}

func (q *levelQueue) reset() {
	q.ids = q.ids[:0]
	for i := range q.queued {
		q.queued[i] = false
	}
}
