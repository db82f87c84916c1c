package messages

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unknownCommand = "unknown"

var knownCommands = map[string]struct{}{
	startCommand:      {},
	helpCommand:       {},
	latestCommand:     {},
	convertCommand:    {},
	historyCommand:    {},
	reportCommand:     {},
	currenciesCommand: {},
}

var histogramResponseTime = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "tcmb_rates",
		Subsystem: "telegram",
		Name:      "response_time_seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	},
	[]string{"command", "error"},
)

// commandLabel keeps label cardinality bounded: free text and unknown
// commands share one label value.
func commandLabel(text string) string {
	cmd, _ := parseCommand(text)
	if _, ok := knownCommands[cmd]; ok {
		return cmd
	}
	return unknownCommand
}

func observeResponse(command string, elapsed time.Duration, failed bool) {
	histogramResponseTime.
		WithLabelValues(command, strconv.FormatBool(failed)).
		Observe(elapsed.Seconds())
}
