// Package poll implements the refresh-loop plumbing: generation-guarded
// loop handles and the change detection that keeps re-renders down to
// the data that actually moved.
//
// Loops are cooperative. A tick only reschedules itself after its fetch
// completes, so slow responses stretch the interval instead of queueing
// overlapping ticks.
package poll

// Handle guards one refresh loop. Start and Stop are idempotent. Each
// Start advances the generation, which invalidates every tick and
// in-flight result issued under an earlier one; a stopped handle
// invalidates them all. Single-threaded by design, matching the
// bubbletea update loop it serves.
type Handle struct {
	gen    uint64
	active bool
}

// Start activates the loop and returns the generation its ticks must
// carry. Calling Start on an active handle restarts the loop: the old
// tick chain dies at its next staleness check, so no second concurrent
// loop can exist for the same scope.
func (h *Handle) Start() uint64 {
	h.gen++
	h.active = true
	return h.gen
}

// Stop deactivates the loop. Ticks already scheduled fail the
// Current check and are discarded.
func (h *Handle) Stop() {
	if !h.active {
		return
	}
	h.active = false
	h.gen++
}

// Active reports whether the loop is running.
func (h *Handle) Active() bool { return h.active }

// Gen returns the current generation.
func (h *Handle) Gen() uint64 { return h.gen }

// Current reports whether a tick or result carrying gen still belongs
// to the live loop.
func (h *Handle) Current(gen uint64) bool {
	return h.active && gen == h.gen
}
