package reactor

// Flags is the state bitset carried by every node that can run in a
// tracking context (an effect or a computed). The set mirrors spec
// §4.2 exactly; see the doc comment on each constant for its contract.
type Flags uint16

const (
	// Active means the subscriber has not been stopped. A stopped
	// subscriber never runs again even if still queued.
	Active Flags = 1 << iota
	// Running guards against a subscriber re-entering its own body
	// while already executing it.
	Running
	// Tracking is set while a run should register the deps it reads.
	Tracking
	// Notified marks a subscriber already queued for this batch, so
	// it is not queued twice.
	Notified
	// Dirty means at least one dep's version has advanced since the
	// subscriber's last successful run.
	Dirty
	// Pending means a computed ancestor might be dirty; the
	// subscriber must revalidate (checkDirty) before trusting its
	// cache or skipping a re-run.
	Pending
	// Paused means notifications are recorded (Dirty still gets set)
	// but dispatch is suppressed until Resume.
	Paused
	// AllowRecurse permits exactly one self-triggered re-run during
	// a subscriber's own execution.
	AllowRecurse
)

// Dependency is anything that can be a change source: it owns a Dep
// and can be read from inside a tracking context.
type Dependency interface {
	dep() *Dep
}

// Subscriber is anything that runs in a tracking context and can be
// notified of upstream change. ReactiveEffect and Computed[T] both
// implement it. Notification itself is handled by Runtime.propagate
// via flag manipulation (see dep.go) rather than a per-subscriber
// callback, so the interface only needs to expose the bookkeeping
// fields propagate and checkDirty read and write.
type Subscriber interface {
	flags() Flags
	setFlags(Flags)
	depsHead() *Link
	setDepsHead(*Link)
	depsTail() *Link
	setDepsTail(*Link)
}

// DependencySubscriber is implemented by nodes that are both a source
// and a subscriber — today, only Computed[T]. checkDirty and propagate
// type-switch on this to decide whether to recurse through a node or
// treat it as a leaf.
type DependencySubscriber interface {
	Dependency
	Subscriber
}

// subscriberBase is embedded by ReactiveEffect and Computed[T] to
// share the flags/deps-list bookkeeping required by the Subscriber
// interface without repeating the accessor boilerplate.
type subscriberBase struct {
	f        Flags
	deps     *Link
	depsTl   *Link
}

func (s *subscriberBase) flags() Flags         { return s.f }
func (s *subscriberBase) setFlags(f Flags)     { s.f = f }
func (s *subscriberBase) depsHead() *Link      { return s.deps }
func (s *subscriberBase) setDepsHead(l *Link)  { s.deps = l }
func (s *subscriberBase) depsTail() *Link      { return s.depsTl }
func (s *subscriberBase) setDepsTail(l *Link)  { s.depsTl = l }
