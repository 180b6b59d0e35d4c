package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wkalt/lod/source"
	"github.com/wkalt/lod/tile"
)

var (
	packOutput      string
	packType        string
	packMaxLevel    int
	packPayloadSize int
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Generate a procedural tile dataset",
	Long: `Generate a complete procedural dataset - every tile of every level up
to --max-level - into a directory or sqlite (.db) store, with a manifest.
Datasets packed here are servable by the store source and usable with the
simulate command.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		typ, err := tile.ParseDataType(packType)
		checkErr(err)
		if packOutput == "" {
			bailf("--output is required")
		}
		store, closeStore, err := openStore(ctx, packOutput)
		checkErr(err)
		defer closeStore()
		manifest, err := source.Pack(ctx, store, typ, packMaxLevel, packPayloadSize)
		checkErr(err)
		color.Green("packed %d %s tiles (levels 0-%d) into %s",
			manifest.TileCount, manifest.Type, manifest.MaxLevel, packOutput)
		color.White("dataset id: %s", manifest.DatasetID)
	},
}

func init() {
	packCmd.PersistentFlags().StringVarP(&packOutput, "output", "o", "", "Output path (directory, or .db for sqlite)")
	packCmd.PersistentFlags().StringVarP(&packType, "type", "t", "elevation", "Tile data type (elevation or imagery)")
	packCmd.PersistentFlags().IntVarP(&packMaxLevel, "max-level", "l", 4, "Deepest level to generate")
	packCmd.PersistentFlags().IntVarP(&packPayloadSize, "payload-size", "s", 256, "Payload size in bytes")
	rootCmd.AddCommand(packCmd)
}
