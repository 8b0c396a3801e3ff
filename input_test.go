package mixloop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputSnapshotIsStableWithinTick(t *testing.T) {
	in := NewInput()
	a := in.Key(KeyA)
	again := in.Key(KeyA)
	ctx := NewCtx(1000)

	assert.False(t, a.Sample(ctx))
	in.SetKey(KeyA, true)
	// the press lands between consumers of the same tick
	assert.False(t, again.Sample(ctx))

	ctx.Advance()
	assert.True(t, a.Sample(ctx))
	assert.True(t, again.Sample(ctx))
}

func TestInputMouse(t *testing.T) {
	in := NewInput()
	in.SetMouse01(0.25, 2)
	ctx := NewCtx(1000)
	assert.Equal(t, 0.25, in.MouseX01().Sample(ctx))
	assert.Equal(t, 1.0, in.MouseY01().Sample(ctx))
}

func TestInputReleaseAll(t *testing.T) {
	in := NewInput()
	in.SetKey(KeyQ, true)
	in.SetKey(KeySpace, true)
	in.ReleaseAll()
	ctx := NewCtx(1000)
	assert.False(t, in.Key(KeyQ).Sample(ctx))
	assert.False(t, in.Key(KeySpace).Sample(ctx))
}

func TestInputOutOfRangeKey(t *testing.T) {
	in := NewInput()
	in.SetKey(KeyCount, true)
	in.SetKey(-1, true)
	assert.False(t, in.Key(KeyCount).Sample(NewCtx(1000)))
}

func TestKeyString(t *testing.T) {
	tests := map[Key]string{
		KeyA:           "A",
		KeyZ:           "Z",
		Key0:           "0",
		Key9:           "9",
		KeyLeftBracket: "[",
		KeySlash:       "/",
		KeySpace:       "space",
		KeyCount:       "Key(46)",
	}
	for k, want := range tests {
		assert.Equal(t, want, k.String())
	}
}

func TestInputConcurrentWriters(t *testing.T) {
	in := NewInput()
	gate := in.Key(KeyW)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				in.SetKey(KeyW, (i+j)%2 == 0)
				in.SetMouse01(float64(j)/100, 0)
			}
		}()
	}
	ctx := NewCtx(1000)
	for range 100 {
		gate.Sample(ctx)
		ctx.Advance()
	}
	wg.Wait()
}

func TestBox(t *testing.T) {
	var b Box[int]
	b.Set(3)
	b.Update(func(v *int) { *v *= 2 })
	assert.Equal(t, 6, b.Get())
	var dst int
	b.CopyTo(&dst)
	assert.Equal(t, 6, dst)
}
