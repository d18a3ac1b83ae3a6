package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	assert.True(t, IsValidID("6BA7B810-9DAD-11D1-80B4-00C04FD430C8"))
	assert.False(t, IsValidID("not-a-uuid"))
	assert.False(t, IsValidID(""))

	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		NormalizeID(" 6BA7B810-9DAD-11D1-80B4-00C04FD430C8 "))
}

func TestProgress(t *testing.T) {
	p, err := NewProgress(55)
	require.NoError(t, err)
	assert.Equal(t, 55, p.Int())
	assert.False(t, p.IsComplete())
	assert.Equal(t, "55%", p.String())

	full, err := NewProgress(100)
	require.NoError(t, err)
	assert.True(t, full.IsComplete())

	_, err = NewProgress(-1)
	assert.Error(t, err)
	_, err = NewProgress(101)
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	s, err := NewScore(87.5)
	require.NoError(t, err)
	assert.Equal(t, 87.5, s.Float64())

	_, err = NewScore(-0.1)
	assert.Error(t, err)
	_, err = NewScore(100.1)
	assert.Error(t, err)
}

func TestAverageScore(t *testing.T) {
	assert.Zero(t, AverageScore(nil))
	assert.InDelta(t, 85.0, AverageScore([]Score{80, 90}), 1e-9)
	assert.InDelta(t, 70.0, AverageScore([]Score{70}), 1e-9)
}

func TestMoney(t *testing.T) {
	m, err := NewMoney(150050)
	require.NoError(t, err)
	assert.Equal(t, int64(150050), m.Cents())
	assert.Equal(t, "1500.50", m.String())

	zero, err := NewMoney(0)
	require.NoError(t, err)
	assert.Equal(t, "0.00", zero.String())

	_, err = NewMoney(-1)
	assert.Error(t, err)
}

func TestActor_OrSystem(t *testing.T) {
	assert.Equal(t, ActorSystem, Actor("").OrSystem())
	assert.Equal(t, Actor("maria"), Actor("maria").OrSystem())
}

func TestTimeRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)

	r, err := NewTimeRange(from, to)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, r.Duration())
	assert.True(t, r.Contains(from.Add(time.Hour)))
	assert.False(t, r.Contains(to.Add(time.Hour)))

	_, err = NewTimeRange(to, from)
	assert.Error(t, err)
}

func TestPagination(t *testing.T) {
	p := NewPagination(3, 20)
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 20, p.Limit())

	// Out-of-range values fall back to defaults.
	d := NewPagination(0, -5)
	assert.Equal(t, 0, d.Offset())
	assert.Equal(t, DefaultPageSize, d.Limit())
}
