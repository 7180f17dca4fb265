package main

import (
	"context"
	"flag"

	"github.com/pageza/recipedia/backend/internal/cli"
	"github.com/pageza/recipedia/backend/internal/dataio"
	"github.com/pageza/recipedia/backend/internal/logging"
)

func main() {
	dir := flag.String("dir", ".", "Directory to write the CSV files to")
	flag.Parse()

	db, err := cli.OpenDatabase()
	if err != nil {
		cli.Fatal(err, "startup failed")
	}

	if err := dataio.Export(context.Background(), db, *dir); err != nil {
		cli.Fatal(err, "export failed")
	}
	logging.Info().Str("dir", *dir).Msg("export complete")
}
