package main

import (
	"fmt"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print registry statistics and gathered metrics",
	Long: `Seeds the registry with the sample pipeline, then prints the
registry census followed by every metric the collector gathered from
the seeding traffic.`,
	Run: func(cmd *cobra.Command, args []string) {
		container, err := buildContainer()
		exitOn(err)
		defer container.Shutdown()

		_, err = seedRegistry(cmd.Context(), container)
		exitOn(err)

		stats := container.Registry.Statistics()
		fmt.Println("Registry:")
		fmt.Printf("  units:           %d\n", stats.Units)
		fmt.Printf("  atomic units:    %d\n", stats.AtomicUnits)
		fmt.Printf("  composite units: %d\n", stats.CompositeUnits)
		fmt.Printf("  cached locals:   %d\n", stats.CachedLocals)
		fmt.Printf("  frames:          %d\n", stats.Frames)
		fmt.Printf("  roots:           %d\n", stats.Roots)

		families, err := container.Collector.Gather()
		exitOn(err)

		fmt.Println("\nMetrics:")
		for _, family := range families {
			for _, metric := range family.GetMetric() {
				fmt.Printf("  %s\n", metricLine(family, metric))
			}
		}
	},
}

// metricLine formats one sample in the canonical name{labels} value shape
func metricLine(family *dto.MetricFamily, metric *dto.Metric) string {
	name := family.GetName()

	if pairs := metric.GetLabel(); len(pairs) > 0 {
		parts := make([]string, 0, len(pairs))
		for _, pair := range pairs {
			parts = append(parts, fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue()))
		}
		name += "{" + strings.Join(parts, ",") + "}"
	}

	var value float64
	switch {
	case metric.GetCounter() != nil:
		value = metric.GetCounter().GetValue()
	case metric.GetGauge() != nil:
		value = metric.GetGauge().GetValue()
	}

	return fmt.Sprintf("%s %g", name, value)
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
