package main

import (
	"context"
	"flag"

	"github.com/pageza/recipedia/backend/internal/cli"
	"github.com/pageza/recipedia/backend/internal/dataio"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding one <table>.csv per table")
	modeFlag := flag.String("mode", string(dataio.Skip), "What to do with populated tables: replace, append or skip")
	flag.Parse()

	mode, err := dataio.ParseMode(*modeFlag)
	if err != nil {
		cli.Fatal(err, "invalid --mode")
	}

	db, err := cli.OpenDatabase()
	if err != nil {
		cli.Fatal(err, "startup failed")
	}

	reports, err := dataio.Import(context.Background(), db, *dir, mode)
	cli.LogReports(reports...)
	if err != nil {
		cli.Fatal(err, "import failed")
	}
}
