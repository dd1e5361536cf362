package scheduler

// SubsystemContext is handed to every Subsystem's Link method once, after all
// subsystems have been registered, so a subsystem may look up its siblings
// before the first Tick.
type SubsystemContext struct {
	registry *Registry
}

// Get looks up a sibling subsystem by name.
func (c *SubsystemContext) Get(name string) (Subsystem, bool) {
	return c.registry.Get(name)
}

// Enumerate lists every registered subsystem's name, in registration order.
func (c *SubsystemContext) Enumerate() []string {
	return c.registry.Enumerate()
}

// Subsystem is anything the Registry coordinates shutdown for. The Scheduler
// itself is a Subsystem, so it can be registered and shut down alongside
// application-defined ones (a render loop, a network poller, and so on).
type Subsystem interface {
	// Name returns the subsystem's registry key. Must be stable for the
	// lifetime of the subsystem.
	Name() string

	// GetFuture returns a future that completes once the subsystem has fully
	// drained after BeginShutdown was called.
	GetFuture() FutureAny

	// Link is invoked once, after every subsystem has been registered and
	// before the first Tick, so implementations may resolve references to
	// their siblings via ctx.
	Link(ctx *SubsystemContext)

	// Tick is invoked once per application frame, in registration order.
	Tick()

	// BeginShutdown requests the subsystem start winding down. It must not
	// block; completion is observed through GetFuture().
	BeginShutdown(token ServiceToken)
}
