package main

import (
	"context"
	"errors"
	"flag"

	"github.com/pageza/recipedia/backend/internal/cli"
	"github.com/pageza/recipedia/backend/internal/dataio"
)

func main() {
	file := flag.String("file", "", "Tag file: .json array of objects or CSV with name,color,slug columns")
	modeFlag := flag.String("mode", string(dataio.Skip), "What to do when tags exist: replace, append or skip")
	flag.Parse()

	if *file == "" {
		cli.Fatal(errors.New("--file is required"), "invalid arguments")
	}
	mode, err := dataio.ParseMode(*modeFlag)
	if err != nil {
		cli.Fatal(err, "invalid --mode")
	}

	db, err := cli.OpenDatabase()
	if err != nil {
		cli.Fatal(err, "startup failed")
	}

	report, err := dataio.LoadTagsFile(context.Background(), db, *file, mode)
	if err != nil {
		cli.Fatal(err, "loading tags failed")
	}
	cli.LogReports(report)
}
