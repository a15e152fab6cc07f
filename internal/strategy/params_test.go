package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsUpdateCoercion(t *testing.T) {
	p := NewParams(map[string]float64{"stop_loss": 0.02, "take_profit": 0.05})

	rejected := p.Update(map[string]any{
		"stop_loss":   0.05,
		"take_profit": "0.10",
	})
	require.Empty(t, rejected)

	sl, _ := p.Get("stop_loss")
	tp, _ := p.Get("take_profit")
	assert.InDelta(t, 0.05, sl, 1e-12)
	assert.InDelta(t, 0.10, tp, 1e-12)
}

func TestParamsUpdatePartialSuccess(t *testing.T) {
	p := NewParams(map[string]float64{"stop_loss": 0.02, "take_profit": 0.05})

	rejected := p.Update(map[string]any{
		"stop_loss":   "not-a-number",
		"take_profit": 0.10,
	})
	assert.Equal(t, []string{"stop_loss"}, rejected)

	sl, _ := p.Get("stop_loss")
	tp, _ := p.Get("take_profit")
	assert.InDelta(t, 0.02, sl, 1e-12, "rejected key keeps prior value")
	assert.InDelta(t, 0.10, tp, 1e-12, "valid sibling still applies")
}

func TestParamsUpdateUnknownKey(t *testing.T) {
	p := NewParams(map[string]float64{"stop_loss": 0.02})
	rejected := p.Update(map[string]any{"leverage": 10})
	assert.Equal(t, []string{"leverage"}, rejected)
	_, ok := p.Get("leverage")
	assert.False(t, ok, "unknown keys are never introduced")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("momentum", NewMomentum))
	require.ErrorIs(t, r.Register("momentum", NewMomentum), ErrDuplicate)
	require.ErrorIs(t, r.Register("", NewMomentum), ErrEmptyName)

	_, err := r.New("missing", "BTCUSDT", nil)
	require.ErrorIs(t, err, ErrUnknown)

	s, err := r.New("momentum", "BTCUSDT", map[string]float64{"quantity": 2})
	require.NoError(t, err)
	assert.Equal(t, "momentum", s.Name())
	assert.InDelta(t, 2, s.Params().GetOr("quantity", 0), 1e-12)
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	assert.Equal(t, []string{"meanrev", "momentum"}, Default().Names())
}
