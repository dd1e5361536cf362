package scheduler

// applyStarvation bumps the priority of any task that has been sitting in
// pending (its readiness closure not yet reporting Ready) for at least
// StarvationThreshold, so a long-awaiting Background task eventually
// out-competes freshly scheduled Interactive work. The bump's clock resets on
// each application, so a task that keeps starving climbs one level per
// threshold interval until it saturates at Critical.
func (s *Scheduler) applyStarvation() {
	now := timeNow()
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		entry := &s.pending[i]
		if now.Sub(entry.enqueuedAt) < s.cfg.StarvationThreshold {
			continue
		}
		bumped := entry.task.priority.bump()
		if bumped != entry.task.priority {
			entry.task.priority = bumped
			s.starvationBumps.Add(1)
			s.cfg.Diagnostics.logger().Sugar().Debugw("task priority bumped for starvation",
				"correlation_id", entry.task.id, "priority", bumped.String())
		}
		entry.enqueuedAt = now
	}
}
