package cmd

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/wkalt/lod/source"
	"github.com/wkalt/lod/texture"
	"github.com/wkalt/lod/tile"
	"github.com/wkalt/lod/treemgr"
)

var (
	simFrames      int
	simFrameTime   time.Duration
	simSeed        int64
	simMaxAge      int
	simGracePeriod int
	simGPUSlots    int
	simMetricsAddr string
)

/*
simulate drives a tree manager against a packed dataset the way a renderer
would: each frame it requests the tile chain covering a wandering focus
point, touches the resident nodes on that chain, and calls Update. It is the
end-to-end smoke test for the streaming pipeline and a workbench for tuning
the age threshold.
*/

var simulateCmd = &cobra.Command{
	Use:   "simulate [dataset]",
	Short: "Stream a dataset through a tree manager with a synthetic camera",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, closeStore, err := openStore(ctx, args[0])
		checkErr(err)
		defer closeStore()
		src, err := source.NewStoreSource(ctx, store)
		checkErr(err)
		defer src.Close()

		if simMetricsAddr != "" {
			go func() {
				http.Handle("/metrics", promhttp.Handler())
				checkErr(http.ListenAndServe(simMetricsAddr, nil))
			}()
		}

		uploads := texture.NewArray(simGPUSlots)
		tm := treemgr.New(
			treemgr.WithName("simulate"),
			treemgr.WithSource(src),
			treemgr.WithUploadManager(uploads),
			treemgr.WithMaxNodeAge(simMaxAge),
			treemgr.WithGracePeriod(simGracePeriod),
		)

		maxLevel := src.Manifest().MaxLevel
		rng := rand.New(rand.NewSource(simSeed))
		focus := rng.Int63n(1 << (2 * maxLevel))
		peak := 0
		for frame := 0; frame < simFrames; frame++ {
			// wander the focus point across the deepest level
			focus += rng.Int63n(3) - 1
			focus &= 1<<(2*maxLevel) - 1

			wanted := visibleSet(focus, maxLevel)
			for _, id := range wanted {
				if node := tm.Tree().Lookup(id); node != nil {
					tm.Touch(node)
				}
			}
			tm.Request(wanted)
			tm.Update()
			if tm.NodeCount() > peak {
				peak = tm.NodeCount()
			}
			if simFrameTime > 0 {
				time.Sleep(simFrameTime)
			}
		}

		color.Cyan("simulated %d frames over %s", simFrames, src)
		color.White("resident nodes:  %d (peak %d)", tm.NodeCount(), peak)
		color.White("gpu resident:    %d (refused %d)", tm.NodeCountGPU(), uploads.RefusedCount())
		color.White("pending tiles:   %d", tm.PendingCount())
		color.White("unmerged nodes:  %d", tm.UnmergedCount())
	},
}

// visibleSet returns the tile chain covering the focus patch: for every
// level, the focus patch's ancestor and its three siblings.
func visibleSet(focus int64, maxLevel int) []tile.ID {
	ids := []tile.ID{{Level: 0, PatchIdx: 0}}
	for level := 1; level <= maxLevel; level++ {
		ancestor := focus >> (2 * (maxLevel - level))
		base := ancestor &^ 3
		for i := int64(0); i < 4; i++ {
			ids = append(ids, tile.ID{Level: level, PatchIdx: base + i})
		}
	}
	return ids
}

func init() {
	simulateCmd.PersistentFlags().IntVarP(&simFrames, "frames", "n", 300, "Number of frames to simulate")
	simulateCmd.PersistentFlags().DurationVar(&simFrameTime, "frame-time", 5*time.Millisecond, "Wall time per frame")
	simulateCmd.PersistentFlags().Int64Var(&simSeed, "seed", 1, "Random walk seed")
	simulateCmd.PersistentFlags().IntVar(&simMaxAge, "max-age", 30, "Eviction age threshold in frames")
	simulateCmd.PersistentFlags().IntVar(&simGracePeriod, "grace-period", 5, "Orphan grace period in frames")
	simulateCmd.PersistentFlags().IntVar(&simGPUSlots, "gpu-slots", 0, "Texture array capacity (0 = unbounded)")
	simulateCmd.PersistentFlags().StringVar(&simMetricsAddr, "metrics", "", "Address to serve Prometheus metrics on")
	rootCmd.AddCommand(simulateCmd)
}
