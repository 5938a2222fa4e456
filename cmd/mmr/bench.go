package main

import (
	"context"
	"fmt"
	"time"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/dustin/go-humanize"
	"github.com/forestrie/go-mmrkv/accumulator"
	"github.com/forestrie/go-mmrkv/internal/leafgen"
	"github.com/forestrie/go-mmrkv/metrics"
	"github.com/forestrie/go-mmrkv/mmr"
	"github.com/forestrie/go-mmrkv/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		count  int
		proofs int
		seed   int64
	)
	reg := prometheus.NewRegistry()
	storeMetrics := metrics.NewMetrics(reg)
	instrument := func(s store.Store) store.Store { return metrics.NewStore(s, storeMetrics) }

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Append random leaves and time appends and proofs",
		Args:  cobra.NoArgs,
		RunE: withMMR(func(ctx context.Context, cmd *cobra.Command, args []string, m *accumulator.MMR, log logger.Logger) error {
			g := leafgen.New(seed)
			leaves := g.Hex(count)

			start := time.Now()
			var last accumulator.AppendResult
			for _, v := range leaves {
				r, err := m.Append(ctx, v)
				if err != nil {
					return err
				}
				last = r
			}
			appendTime := time.Since(start)

			indices := g.Shuffle(leafIndices(last.ElementsCount, proofs))
			start = time.Now()
			if _, err := m.GetProofs(ctx, indices); err != nil {
				return err
			}
			proofTime := time.Since(start)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "appended %s leaves in %s (%s)\n",
				humanize.Comma(int64(count)), appendTime, rate(count, appendTime))
			fmt.Fprintf(out, "proved %s leaves in %s (%s)\n",
				humanize.Comma(int64(len(indices))), proofTime, rate(len(indices), proofTime))
			fmt.Fprintf(out, "elements %s, root %s\n", humanize.Comma(int64(last.ElementsCount)), last.RootHash)
			log.Infof("bench: id=%s, leaves=%d, elements=%d", m.ID(), count, last.ElementsCount)
			return printStoreMetrics(cmd, reg)
		}, instrument),
	}
	cmd.Flags().IntVar(&count, "count", 1000, "Number of leaves to append")
	cmd.Flags().IntVar(&proofs, "proofs", 100, "Number of inclusion proofs to produce")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed for the leaf values")
	return cmd
}

// leafIndices returns the element index of the first n leaves of an mmr with
// elementsCount nodes
func leafIndices(elementsCount uint64, n int) []uint64 {
	var indices []uint64
	for i, leaves := uint64(1), 0; i <= elementsCount && leaves < n; i++ {
		if mmr.IsLeaf(i) {
			indices = append(indices, i)
			leaves++
		}
	}
	return indices
}

func rate(n int, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return humanize.SIWithDigits(float64(n)/d.Seconds(), 2, "/s")
}

func printStoreMetrics(cmd *cobra.Command, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			c := metric.GetCounter()
			if c == nil {
				continue
			}
			op := ""
			for _, l := range metric.GetLabel() {
				if l.GetName() == "op" {
					op = l.GetValue()
				}
			}
			fmt.Fprintf(out, "%s{op=%s} %s\n", f.GetName(), op, humanize.Comma(int64(c.GetValue())))
		}
	}
	return nil
}
