package candles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_engine/internal/models"
)

func bar(ts int64, close float64, completed bool) models.Candle {
	return models.Candle{
		Instrument: "XRP-USDT",
		Period:     "15m",
		BarTime:    ts,
		Open:       close - 0.01,
		High:       close + 0.02,
		Low:        close - 0.02,
		Close:      close,
		Volume:     1000,
		Completed:  completed,
	}
}

func TestMergeModifiedOnly(t *testing.T) {
	local := []models.Candle{bar(3000, 2.85, false), bar(2000, 2.84, true), bar(1000, 2.83, true)}
	remote := []models.Candle{bar(3000, 2.86, true), bar(2000, 2.84, true), bar(1000, 2.83, true)}

	diff := Merge(local, remote)

	require.Len(t, diff.Modified, 1)
	assert.Equal(t, int64(3000), diff.Modified[0].BarTime)
	assert.Equal(t, 2.86, diff.Modified[0].Close)
	assert.Empty(t, diff.Missing)
}

func TestMergeMissingOnly(t *testing.T) {
	local := []models.Candle{bar(2000, 2.84, true), bar(1000, 2.83, true)}
	remote := []models.Candle{bar(4000, 2.87, false), bar(3000, 2.86, true), bar(2000, 2.84, true), bar(1000, 2.83, true)}

	diff := Merge(local, remote)

	require.Len(t, diff.Missing, 2)
	assert.Equal(t, int64(4000), diff.Missing[0].BarTime)
	assert.Equal(t, int64(3000), diff.Missing[1].BarTime)
	assert.Empty(t, diff.Modified)
}

func TestMergeMixedWindow(t *testing.T) {
	local := []models.Candle{bar(3000, 2.85, false), bar(1000, 2.83, true)}
	remote := []models.Candle{bar(4000, 2.88, false), bar(3000, 2.85, true), bar(2000, 2.84, true), bar(1000, 2.83, true)}

	diff := Merge(local, remote)

	require.Len(t, diff.Missing, 2)
	assert.Equal(t, int64(4000), diff.Missing[0].BarTime)
	assert.Equal(t, int64(2000), diff.Missing[1].BarTime)
	// completed перевернулся — бар считается изменённым при равных ценах
	require.Len(t, diff.Modified, 1)
	assert.Equal(t, int64(3000), diff.Modified[0].BarTime)
}

func TestMergeIdenticalWindowsIsNoop(t *testing.T) {
	window := []models.Candle{bar(2000, 2.84, true), bar(1000, 2.83, true)}

	diff := Merge(window, window)

	assert.Empty(t, diff.Modified)
	assert.Empty(t, diff.Missing)
}

// Локальная история глубже биржевого окна: старые бары не трогаются.
func TestMergeIgnoresLocalTail(t *testing.T) {
	local := []models.Candle{bar(2000, 2.84, true), bar(1000, 2.83, true), bar(500, 2.80, true)}
	remote := []models.Candle{bar(2000, 2.84, true)}

	diff := Merge(local, remote)

	assert.Empty(t, diff.Modified)
	assert.Empty(t, diff.Missing)
}
