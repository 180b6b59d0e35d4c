package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wkalt/lod/source"
	"github.com/wkalt/lod/storage"
	"github.com/wkalt/lod/tile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [dataset]",
	Short: "Print a dataset's manifest and per-level tile counts",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, closeStore, err := openStore(ctx, args[0])
		checkErr(err)
		defer closeStore()
		manifest, err := source.ReadManifest(ctx, store)
		checkErr(err)
		color.Cyan("dataset %s", manifest.DatasetID)
		fmt.Printf("type:       %s\n", manifest.Type)
		fmt.Printf("max level:  %d\n", manifest.MaxLevel)
		fmt.Printf("tile count: %d\n", manifest.TileCount)
		for level := 0; level <= manifest.MaxLevel; level++ {
			present := 0
			patches := int64(1) << (2 * level)
			for patch := int64(0); patch < patches; patch++ {
				id := tile.ID{Level: level, PatchIdx: patch}
				if _, err := store.Get(ctx, source.TileKey(id)); err == nil {
					present++
				} else if !errors.Is(err, storage.ErrObjectNotFound) {
					checkErr(err)
				}
			}
			fmt.Printf("level %d: %d/%d tiles\n", level, present, patches)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
