package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type box struct{ n int }

func TestOfTreatsZeroValuesAsPresent(t *testing.T) {
	assert.True(t, Of(0).Present())
	assert.True(t, Of("").Present())
	assert.True(t, Of(false).Present())

	var p *box
	assert.False(t, Of(p).Present())
	var s []int
	assert.False(t, Of(s).Present())
	var m map[string]int
	assert.False(t, Of(m).Present())
	var i any
	assert.False(t, Of(i).Present())
}

func TestBindShortCircuits(t *testing.T) {
	calls := 0
	out := Bind(None[int](), func(v int) int {
		calls++
		return v + 1
	})
	assert.False(t, out.Present())
	assert.Equal(t, 0, calls)

	got, ok := Bind(Some(2), func(v int) int { return v * 10 }).Get()
	assert.True(t, ok)
	assert.Equal(t, 20, got)
}

func TestBindRewrapsNilResultAsAbsent(t *testing.T) {
	out := Bind(Some(1), func(int) *box { return nil })
	assert.False(t, out.Present())
}

func TestDoRunsOnlyWhenPresent(t *testing.T) {
	var seen []int
	o := Some(7).Do(func(v int) { seen = append(seen, v) })
	None[int]().Do(func(v int) { seen = append(seen, v) })

	assert.Equal(t, []int{7}, seen)
	v, ok := o.Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestDoDoesNotShortCircuitOnFalse(t *testing.T) {
	ran := false
	Some(false).Do(func(bool) { ran = true })
	assert.True(t, ran)
}

func TestCatch(t *testing.T) {
	assert.Equal(t, 3, None[int]().Catch(func() int { return 3 }).OrElse(-1))
	assert.Equal(t, 1, Some(1).Catch(func() int { return 3 }).OrElse(-1))
}

func TestThenAndFromPair(t *testing.T) {
	lookup := map[string]int{"a": 1}
	find := func(k string) Option[int] {
		v, ok := lookup[k]
		return FromPair(v, ok)
	}
	assert.Equal(t, 1, Then(Some("a"), find).OrElse(0))
	assert.False(t, Then(Some("b"), find).Present())
	assert.False(t, Then(None[string](), find).Present())
}

func TestChainWithPointers(t *testing.T) {
	b := &box{n: 4}
	got := Bind(Of(b), func(b *box) int { return b.n }).
		Do(func(n int) { b.n = n + 1 }).
		OrElse(0)
	assert.Equal(t, 4, got)
	assert.Equal(t, 5, b.n)
}
