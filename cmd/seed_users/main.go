package main

import (
	"context"
	"flag"

	"github.com/pageza/recipedia/backend/internal/cli"
	"github.com/pageza/recipedia/backend/internal/dataio"
)

func main() {
	password := flag.String("password", "", "Password for every seeded account")
	flag.Parse()

	db, err := cli.OpenDatabase()
	if err != nil {
		cli.Fatal(err, "startup failed")
	}

	report, err := dataio.SeedUsers(context.Background(), db, dataio.DemoUsers, *password)
	if err != nil {
		cli.Fatal(err, "seeding users failed")
	}
	cli.LogReports(report)
}
