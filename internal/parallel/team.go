package parallel

import (
	"fmt"
	"sync"
)

// Team is a fixed set of cores executing forked work in lockstep.
//
// Each core is a goroutine started once by NewTeam. Fork hands the same
// function to every core and blocks until all of them return; there is no
// queue, no work stealing and no cancellation. A forked function must not
// call Fork on the same team.
type Team struct {
	cores  int
	jobs   []chan func(int)
	wg     sync.WaitGroup
	mu     sync.Mutex // serialises Fork
	closed bool
}

// NewTeam starts a team of the given number of cores.
func NewTeam(cores int) *Team {
	if cores <= 0 {
		panic(fmt.Sprintf("parallel: invalid core count %d", cores))
	}

	t := &Team{
		cores: cores,
		jobs:  make([]chan func(int), cores),
	}
	for id := range t.jobs {
		ch := make(chan func(int))
		t.jobs[id] = ch
		go t.run(id, ch)
	}
	return t
}

// NewTeamFromConfig starts a team sized by cfg.
func NewTeamFromConfig(cfg Config) *Team {
	if cfg.MaxCores > 0 && cfg.Cores > cfg.MaxCores {
		panic(fmt.Sprintf("parallel: %d cores exceeds the maximum of %d", cfg.Cores, cfg.MaxCores))
	}
	return NewTeam(cfg.Cores)
}

func (t *Team) run(id int, ch <-chan func(int)) {
	for f := range ch {
		f(id)
		t.wg.Done()
	}
}

// Cores returns the team size.
func (t *Team) Cores() int {
	return t.cores
}

// Fork runs f(coreID) on every core and waits for all of them.
func (t *Team) Fork(f func(coreID int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		panic("parallel: fork on a closed team")
	}

	t.wg.Add(t.cores)
	for _, ch := range t.jobs {
		ch <- f
	}
	t.wg.Wait()
}

// ForRange splits [0, n) with Chunk and runs f on each non-empty range.
func (t *Team) ForRange(n int, f func(lo, hi int)) {
	t.Fork(func(id int) {
		lo, hi := Chunk(n, t.cores, id)
		if lo < hi {
			f(lo, hi)
		}
	})
}

// For executes f(i) for i in [0, n), statically split across the team.
func (t *Team) For(n int, f func(i int)) {
	t.ForRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			f(i)
		}
	})
}

// Close stops the cores. The team must not be used afterwards.
func (t *Team) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for _, ch := range t.jobs {
		close(ch)
	}
}
