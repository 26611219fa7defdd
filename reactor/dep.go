package reactor

// Link is the single unit of both dependency tracking and garbage
// collection: a reversible edge between one Dep and one Subscriber.
// Like alien/types.go's link, it carries only a forward pointer on the
// subscriber side (nextDep) because stale links are only ever cut from
// the tail of a subscriber's list, but a full doubly-linked list
// (prevSub/nextSub) on the dep side, because an individual subscriber
// can detach from the middle of a dep's subscriber list independently
// (e.g. a sibling effect stops while this one keeps running).
type Link struct {
	dep *Dep
	sub Subscriber

	// version is the dep.version observed the last time this link
	// was confirmed live during sub's run. Comparing it against the
	// dep's current version is the O(1) fast path for "did this
	// particular source change".
	version uint64

	prevSub *Link
	nextSub *Link
	nextDep *Link
}

// Dep is a change source: it is not itself keyed by (target, key) —
// callers (the reactive package's proxies, and Computed's own value
// slot) own one Dep per tracked slot and call Track/Trigger on it
// directly. Dep holds the monotonic version counter and the head/tail
// of its subscriber list.
type Dep struct {
	version uint64

	subsHead *Link
	subsTail *Link

	// owner is set when this Dep belongs to a Computed (the Computed
	// is both a Dependency, via this Dep, and a Subscriber of its own
	// upstream deps). checkDirty uses it to refresh a computed
	// dependency lazily instead of trusting a stale cached value.
	owner DependencySubscriber
}

// NewDep constructs a standalone change source, e.g. one slot of a
// reactive object or one element of a reactive collection.
func NewDep() *Dep { return &Dep{} }

// Track registers rt's currently active subscriber (if any) as a
// dependent of d. Outside any active subscriber this is a no-op, per
// spec §4.1.
func (d *Dep) Track(rt *Runtime) {
	sub := rt.activeSub
	if sub == nil {
		return
	}
	flags := sub.flags()
	if flags&Tracking == 0 {
		return
	}
	l := rt.link(d, sub)
	l.version = d.version
}

// Trigger bumps the global version once and then, for each dep
// passed, bumps that dep's own version and walks its subscriber list
// to propagate the change. Callers pass multiple deps (e.g. a
// specific key's Dep plus IterateKey's Dep) to cover the auxiliary
// keys spec §4.1 names, while still only advancing globalVersion once
// per logical write.
func (rt *Runtime) Trigger(deps ...*Dep) {
	if len(deps) == 0 {
		return
	}
	rt.globalVersion++
	for _, d := range deps {
		if d == nil {
			continue
		}
		d.version++
		if d.subsHead != nil {
			rt.propagate(d.subsHead, false)
		}
	}
	if rt.batchDepth == 0 {
		rt.drain()
	}
}

// propagate walks a linked run of Links starting at l, marking each
// subscriber Dirty (pending == false, meaning l.dep itself definitely
// changed) or Pending (pending == true, meaning a descendant of a
// changed computed might have changed — must be revalidated lazily).
// When a marked subscriber is itself a Dependency (a Computed), its
// own downstream subscribers are propagated to with pending == true,
// since we do not yet know whether the computed's cached value will
// actually differ. Leaf subscribers (plain effects) are enqueued for
// the batch drain.
func (rt *Runtime) propagate(l *Link, pending bool) {
	for ; l != nil; l = l.nextSub {
		sub := l.sub
		flags := sub.flags()
		if flags&Active == 0 {
			continue
		}
		if flags&Running != 0 && flags&AllowRecurse == 0 && sameSubscriber(sub, rt.activeSub) {
			continue
		}
		wasNotified := flags&Notified != 0

		if pending {
			if flags&(Dirty|Pending) != 0 {
				continue
			}
			sub.setFlags(flags | Pending | Notified)
		} else {
			if flags&Dirty == 0 {
				sub.setFlags(flags | Dirty | Notified)
			} else {
				sub.setFlags(flags | Notified)
			}
		}

		if depSub, ok := sub.(DependencySubscriber); ok {
			if sd := depSub.dep(); sd.subsHead != nil {
				rt.propagate(sd.subsHead, true)
			}
			continue
		}

		if !wasNotified {
			rt.enqueueEffect(sub)
		}
	}
}

func sameSubscriber(a, b Subscriber) bool {
	return a != nil && b != nil && a == b
}

// checkDirty revalidates sub's dependencies, lazily refreshing any
// Computed deps still marked Pending, and reports whether sub should
// be treated as dirty (some dependency's value actually differs from
// what sub last observed). It clears the Pending flag on computed
// deps that turn out not to have changed, so repeated calls are cheap.
func (rt *Runtime) checkDirty(sub Subscriber) bool {
	for l := sub.depsHead(); l != nil; l = l.nextDep {
		dep := l.dep
		if dep.owner != nil {
			owner := dep.owner
			oFlags := owner.flags()
			switch {
			case oFlags&Dirty != 0:
				if rt.refreshComputed(owner) {
					return true
				}
			case oFlags&Pending != 0:
				if rt.checkDirty(owner) {
					if rt.refreshComputed(owner) {
						return true
					}
				} else {
					owner.setFlags(owner.flags() &^ Pending)
				}
			default:
				if l.version != dep.version {
					return true
				}
			}
			continue
		}
		if l.version != dep.version {
			return true
		}
	}
	return false
}

// refresher is implemented by Computed[T]; checkDirty type-asserts to
// it so the non-generic dep graph can lazily refresh a generic
// computed without reflection.
type refresher interface {
	refresh(rt *Runtime) bool
}

func (rt *Runtime) refreshComputed(sub DependencySubscriber) bool {
	r, ok := sub.(refresher)
	if !ok {
		return false
	}
	return r.refresh(rt)
}

// link ensures an edge exists between dep and sub, reusing a link left
// over from sub's previous run when the read order matches (the
// steady-state, allocation-free path), and otherwise allocating one.
func (rt *Runtime) link(dep *Dep, sub Subscriber) *Link {
	tail := sub.depsTail()

	var candidate *Link
	if tail != nil {
		candidate = tail.nextDep
	} else {
		candidate = sub.depsHead()
	}
	if candidate != nil && candidate.dep == dep {
		sub.setDepsTail(candidate)
		return candidate
	}

	if depTail := dep.subsTail; depTail != nil && depTail.sub == sub && rt.isValidLink(depTail, sub) {
		return depTail
	}

	return rt.linkNewDep(dep, sub, candidate, tail)
}

// isValidLink reports whether checkLink is part of sub's current
// dep list (from head through depsTail inclusive).
func (rt *Runtime) isValidLink(checkLink *Link, sub Subscriber) bool {
	tail := sub.depsTail()
	if tail == nil {
		return false
	}
	for l := sub.depsHead(); l != nil; l = l.nextDep {
		if l == checkLink {
			return true
		}
		if l == tail {
			break
		}
	}
	return false
}

func (rt *Runtime) linkNewDep(dep *Dep, sub Subscriber, nextDep, depsTail *Link) *Link {
	l := &Link{dep: dep, sub: sub, nextDep: nextDep}

	if depsTail == nil {
		sub.setDepsHead(l)
	} else {
		depsTail.nextDep = l
	}

	if dep.subsHead == nil {
		dep.subsHead = l
	} else {
		oldTail := dep.subsTail
		l.prevSub = oldTail
		oldTail.nextSub = l
	}

	sub.setDepsTail(l)
	dep.subsTail = l

	return l
}

// startTracking prepares sub for a fresh run: the dep-reuse cursor is
// reset to the head so reads during the run are matched against the
// previous run's order from the start.
func (rt *Runtime) startTracking(sub Subscriber) {
	sub.setDepsTail(nil)
	flags := sub.flags()
	sub.setFlags(flags&^(Notified|Dirty|Pending) | Tracking)
}

// endTracking detaches every link past sub's final depsTail (stale
// reads from this run that were not re-confirmed) and clears Tracking.
func (rt *Runtime) endTracking(sub Subscriber) {
	tail := sub.depsTail()
	if tail != nil {
		if stale := tail.nextDep; stale != nil {
			rt.clearTracking(stale)
			tail.nextDep = nil
		}
	} else if head := sub.depsHead(); head != nil {
		rt.clearTracking(head)
		sub.setDepsHead(nil)
	}
	sub.setFlags(sub.flags() &^ Tracking)
}

// clearTracking detaches a chain of links (starting at l) from both
// the dep's subscriber list and (implicitly, by being dropped) the
// sub's dep list.
func (rt *Runtime) clearTracking(l *Link) {
	for l != nil {
		dep := l.dep
		next := l.nextDep

		if l.nextSub != nil {
			l.nextSub.prevSub = l.prevSub
		} else {
			dep.subsTail = l.prevSub
		}
		if l.prevSub != nil {
			l.prevSub.nextSub = l.nextSub
		} else {
			dep.subsHead = l.nextSub
		}

		l.dep, l.sub, l.prevSub, l.nextSub, l.nextDep = nil, nil, nil, nil, nil
		l = next
	}
}
