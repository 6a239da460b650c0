package main

// workQueue holds the statements not yet executed. Words, eval, if, and
// keep all work by splicing whole statement batches ahead of everything
// already queued, so the front segment is kept reversed: splicing is an
// amortized O(1) append per statement rather than an O(n) shuffle of the
// queue.
type workQueue struct {
	front []statement // reversed; the next statement is front[len(front)-1]
	back  []statement // program order, consumed from index next
	next  int
}

func (q *workQueue) size() int { return len(q.front) + len(q.back) - q.next }

// pushBack appends statements to run after everything already queued.
func (q *workQueue) pushBack(stmts ...statement) {
	q.back = append(q.back, stmts...)
}

// splice prepends a statement batch ahead of everything already queued,
// preserving the batch's order.
func (q *workQueue) splice(stmts []statement) {
	for i := len(stmts) - 1; i >= 0; i-- {
		q.front = append(q.front, stmts[i])
	}
}

func (q *workQueue) popFront() (statement, bool) {
	if i := len(q.front) - 1; i >= 0 {
		s := q.front[i]
		q.front[i] = nil
		q.front = q.front[:i]
		return s, true
	}
	if q.next < len(q.back) {
		s := q.back[q.next]
		q.back[q.next] = nil
		q.next++
		if q.next == len(q.back) {
			q.back = q.back[:0]
			q.next = 0
		}
		return s, true
	}
	return nil, false
}

// snapshot copies the queued statements in execution order without
// consuming them.
func (q *workQueue) snapshot() []statement {
	stmts := make([]statement, 0, q.size())
	for i := len(q.front) - 1; i >= 0; i-- {
		stmts = append(stmts, q.front[i])
	}
	return append(stmts, q.back[q.next:]...)
}

func (q *workQueue) clear() {
	q.front = q.front[:0]
	q.back = q.back[:0]
	q.next = 0
}
