package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/wkalt/lod/storage"
)

var rootCmd = &cobra.Command{
	Use:   "lod",
	Short: "planetary tile dataset and streaming tools",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func bailf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func checkErr(err error) {
	if err != nil {
		bailf("error: %v", err)
	}
}

// openStore interprets a dataset path: a path ending in .db opens a sqlite
// store, anything else a directory store.
func openStore(_ context.Context, path string) (storage.Provider, func(), error) {
	if strings.HasSuffix(path, ".db") {
		db, err := sql.Open("sqlite3", path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		store, err := storage.NewSQLStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	}
	return storage.NewDirectoryStore(path), func() {}, nil
}
