package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()

	dir := t.TempDir()
	fills := filepath.Join(dir, "fills.csv")
	equity := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(fills, equity)
	require.NoError(t, err)

	return j, fills, equity
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVHeadersWritten(t *testing.T) {
	t.Parallel()

	j, fills, equity := newTestCSV(t)
	require.NoError(t, j.Close())

	fr := readCSV(t, fills)
	require.Len(t, fr, 1)
	assert.Equal(t, []string{"fill_id", "pair", "symbol", "side", "amount", "price", "fee", "time"}, fr[0])

	er := readCSV(t, equity)
	require.Len(t, er, 1)
	assert.Equal(t, []string{"time", "pair", "cash", "holdings_value", "total_value"}, er[0])
}

func TestCSVRecordFill(t *testing.T) {
	t.Parallel()

	j, fills, _ := newTestCSV(t)

	ts := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordFill(Fill{
		ID:     "F1",
		Pair:   "BTC_USDT",
		Symbol: "BTC",
		Side:   "sell",
		Amount: 4.95,
		Price:  110,
		Fee:    1.089,
		Time:   ts,
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, fills)
	require.Len(t, rows, 2)
	assert.Equal(t, "F1", rows[1][0])
	assert.Equal(t, "sell", rows[1][3])
	assert.Equal(t, "4.95", rows[1][4])
	assert.Equal(t, "1.089", rows[1][6])
	assert.Equal(t, "2024-01-02T03:00:00Z", rows[1][7])
}

func TestCSVRecordEquity(t *testing.T) {
	t.Parallel()

	j, _, equity := newTestCSV(t)

	ts := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:          ts,
		Pair:          "BTC_USDT",
		Cash:          547.421,
		HoldingsValue: 0,
		TotalValue:    547.421,
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, equity)
	require.Len(t, rows, 2)
	assert.Equal(t, "547.421", rows[1][2])
	assert.Equal(t, "547.421", rows[1][4])
}
