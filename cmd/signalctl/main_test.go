package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TradeSim/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readings = `
current_price: 100
indicators:
  - {kind: RSI, value: 25}
  - {kind: MACD, value: {macd: 3, signal: 1}}
  - {kind: ATR, value: 2}
moving_averages:
  - {period: 20, kind: Simple, value: 90}
  - {period: 50, kind: Exponential, value: 120}
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(readings), 0o600))

	out, err := run(t, "", "classify", "-f", path, "--json")
	require.NoError(t, err)

	var s models.TechnicalSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	require.Len(t, s.Oscillators, 3)
	assert.Equal(t, models.DecisionOversold, s.Oscillators[0].Decision)
	assert.Equal(t, models.DecisionBuy, s.Oscillators[1].Decision)
	assert.Equal(t, models.DecisionHighVolatility, s.Oscillators[2].Decision)
	assert.Equal(t, 1, s.MovingAverageSummary.Buy)
	assert.Equal(t, 1, s.MovingAverageSummary.Sell)
}

func TestClassifyPriceOverrideFromStdin(t *testing.T) {
	out, err := run(t, readings, "classify", "-f", "-", "--price", "1000")
	require.NoError(t, err)
	// ATR 2 at price 1000 is 0.2%, low volatility
	assert.Contains(t, out, "Low Volatility")
	assert.Contains(t, out, "overall")
}

func TestClassifyRejectsBadValue(t *testing.T) {
	_, err := run(t, "indicators:\n  - {kind: RSI, value: {macd: 1, signal: 2}}\n", "classify", "-f", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RSI")
}

func TestOverall(t *testing.T) {
	out, err := run(t, "", "overall", "12", "2")
	require.NoError(t, err)
	assert.Equal(t, "Strong Buy\n", out)

	_, err = run(t, "", "overall", "-1", "2")
	assert.Error(t, err)
}
