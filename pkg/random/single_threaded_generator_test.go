package random_test

import (
	"testing"

	"github.com/buildbarn/bb-pagesim/pkg/random"
	"github.com/stretchr/testify/require"
)

func TestSingleThreadedGenerator(t *testing.T) {
	for name, generator := range map[string]random.SingleThreadedGenerator{
		"FastSingleThreaded": random.NewFastSingleThreadedGenerator(),
		"Seeded":             random.NewSeededSingleThreadedGenerator(1, 2),
	} {
		t.Run(name, func(t *testing.T) {
			t.Run("IntN", func(t *testing.T) {
				for i := 0; i < 100; i++ {
					v := generator.IntN(42)
					require.LessOrEqual(t, 0, v)
					require.Greater(t, 42, v)
				}
			})

			t.Run("Float64", func(t *testing.T) {
				for i := 0; i < 100; i++ {
					v := generator.Float64()
					require.LessOrEqual(t, 0.0, v)
					require.Greater(t, 1.0, v)
				}
			})

			t.Run("Shuffle", func(t *testing.T) {
				called := false
				for !called {
					generator.Shuffle(100, func(i, j int) {
						called = true
					})
				}
			})
		})
	}
}

func TestSeededSingleThreadedGenerator(t *testing.T) {
	a := random.NewSeededSingleThreadedGenerator(42, 7)
	b := random.NewSeededSingleThreadedGenerator(42, 7)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
}
