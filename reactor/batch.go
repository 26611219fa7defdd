package reactor

// effectQueueNode is a singly-linked FIFO queue entry. propagate
// enqueues in encounter order and appends at the tail, so drain walks
// the queue oldest-first, matching spec §4.4's FIFO-by-enqueue-time
// dispatch guarantee.
type effectQueueNode struct {
	sub  Subscriber
	next *effectQueueNode
}

func (rt *Runtime) enqueueEffect(sub Subscriber) {
	node := &effectQueueNode{sub: sub}
	if rt.queuedEffectsTail != nil {
		rt.queuedEffectsTail.next = node
	} else {
		rt.queuedEffects = node
	}
	rt.queuedEffectsTail = node
}

// StartBatch opens a batch: triggers during it are coalesced and the
// affected subscribers are not dispatched until the matching EndBatch
// returns the depth to zero.
func (rt *Runtime) StartBatch() {
	rt.batchDepth++
}

// EndBatch closes a batch opened by StartBatch. When the depth returns
// to zero, queued subscribers are drained; the first error raised by
// any of them during the drain is returned (after every queued
// subscriber has had a chance to run, per spec §7).
func (rt *Runtime) EndBatch() error {
	rt.batchDepth--
	if rt.batchDepth < 0 {
		rt.batchDepth = 0
	}
	if rt.batchDepth == 0 {
		return rt.drain()
	}
	return nil
}

// Batch runs fn inside a batch bracket, coalescing every trigger fn
// causes into a single flush at the end.
func (rt *Runtime) Batch(fn func()) error {
	rt.StartBatch()
	fn()
	return rt.EndBatch()
}

// drain dispatches every queued effect, revalidating any that were
// only marked Pending before deciding whether to actually run them.
// New entries queued while draining (an effect's own body writing to
// another source) are picked up by the outer for loop instead of a
// second explicit pass, since the queue is a plain FIFO list that
// keeps growing at the tail while drain consumes it from the head.
func (rt *Runtime) drain() error {
	var firstErr error
	for rt.queuedEffects != nil {
		node := rt.queuedEffects
		rt.queuedEffects = node.next
		if rt.queuedEffects == nil {
			rt.queuedEffectsTail = nil
		}

		sub := node.sub
		flags := sub.flags()
		sub.setFlags(flags &^ Notified)

		if flags&Active == 0 {
			continue
		}

		dirty := flags&Dirty != 0
		if !dirty && flags&Pending != 0 {
			dirty = rt.checkDirty(sub)
			if dirty {
				sub.setFlags(sub.flags() | Dirty)
			} else {
				sub.setFlags(sub.flags() &^ Pending)
			}
		}
		if !dirty {
			continue
		}
		if flags&Paused != 0 {
			continue
		}

		if err := rt.runSubscriber(sub); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// runSubscriber dispatches a queued subscriber. Only ReactiveEffect
// values are ever queued as leaves (Computed values are refreshed
// lazily by checkDirty, never queued directly), so this narrows to
// the effect run path.
func (rt *Runtime) runSubscriber(sub Subscriber) error {
	e, ok := sub.(*ReactiveEffect)
	if !ok {
		return nil
	}
	return rt.dispatch(e)
}

// Package-level sugar over Default().
func StartBatch()             { Default().StartBatch() }
func EndBatch() error         { return Default().EndBatch() }
func Batch(fn func()) error   { return Default().Batch(fn) }
