package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/pageza/recipedia/backend/internal/cli"
	"github.com/pageza/recipedia/backend/internal/dataio"
)

func main() {
	file := flag.String("file", "", "CSV file with ingredient,unit columns")
	modeFlag := flag.String("mode", string(dataio.Skip), "What to do when ingredients exist: replace, append or skip")
	flag.Parse()

	if *file == "" {
		cli.Fatal(errors.New("--file is required"), "invalid arguments")
	}
	mode, err := dataio.ParseMode(*modeFlag)
	if err != nil {
		cli.Fatal(err, "invalid --mode")
	}

	f, err := os.Open(*file)
	if err != nil {
		cli.Fatal(err, "cannot open ingredient file")
	}
	defer f.Close()

	db, err := cli.OpenDatabase()
	if err != nil {
		cli.Fatal(err, "startup failed")
	}

	report, err := dataio.LoadIngredients(context.Background(), db, f, mode)
	if err != nil {
		cli.Fatal(err, "loading ingredients failed")
	}
	cli.LogReports(report)
}
