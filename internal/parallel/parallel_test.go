package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTeam(t testing.TB, cores int) *Team {
	t.Helper()
	team := NewTeam(cores)
	t.Cleanup(team.Close)
	return team
}

func TestFork_RunsEveryCoreOnce(t *testing.T) {
	team := newTestTeam(t, 8)

	var hits [8]int32
	team.Fork(func(id int) {
		atomic.AddInt32(&hits[id], 1)
	})

	for id, n := range hits {
		assert.Equal(t, int32(1), n, "core %d", id)
	}
}

func TestFork_IsABarrier(t *testing.T) {
	team := newTestTeam(t, 4)

	var done int32
	for round := 1; round <= 50; round++ {
		team.Fork(func(_ int) {
			atomic.AddInt32(&done, 1)
		})
		require.Equal(t, int32(4*round), atomic.LoadInt32(&done))
	}
}

func TestFor(t *testing.T) {
	team := newTestTeam(t, 3)

	var counter int64
	n := 1000

	team.For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})

	assert.Equal(t, int64(n), counter)
}

func TestFor_SingleCore(t *testing.T) {
	team := newTestTeam(t, 1)

	var counter int64
	team.For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})

	assert.Equal(t, int64(100), counter)
}

// Every item must be owned by exactly one core, for every team size.
func TestChunk_Partition(t *testing.T) {
	for cores := 1; cores <= 16; cores++ {
		for _, n := range []int{0, 1, 2, 3, 7, 8, 13, 16, 31, 100} {
			owner := make([]int, n)
			for id := 0; id < cores; id++ {
				lo, hi := Chunk(n, cores, id)
				require.LessOrEqual(t, lo, hi)
				for i := lo; i < hi; i++ {
					owner[i]++
				}
			}
			for i, c := range owner {
				require.Equal(t, 1, c, "n=%d cores=%d item=%d", n, cores, i)
			}
		}
	}
}

func TestChunk_LastCoreTakesRemainder(t *testing.T) {
	// ceil(10/4) = 3 -> 3,3,3,1
	want := [][2]int{{0, 3}, {3, 6}, {6, 9}, {9, 10}}
	for id, w := range want {
		lo, hi := Chunk(10, 4, id)
		assert.Equal(t, w, [2]int{lo, hi}, "core %d", id)
	}
}

func TestNewTeam_InvalidCores(t *testing.T) {
	assert.Panics(t, func() { NewTeam(0) })
	assert.Panics(t, func() {
		NewTeamFromConfig(Config{Cores: 9, MaxCores: 8})
	})
}

func TestFork_AfterClosePanics(t *testing.T) {
	team := NewTeam(2)
	team.Close()
	team.Close() // idempotent

	assert.Panics(t, func() { team.Fork(func(int) {}) })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Positive(t, cfg.Cores)
}

func BenchmarkFor(b *testing.B) {
	n := 10000

	b.Run("team", func(b *testing.B) {
		team := newTestTeam(b, HostCores())
		for i := 0; i < b.N; i++ {
			var sum int64
			team.For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			})
		}
	})

	b.Run("single", func(b *testing.B) {
		team := newTestTeam(b, 1)
		for i := 0; i < b.N; i++ {
			var sum int64
			team.For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			})
		}
	})
}
