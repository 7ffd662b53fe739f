package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrijs2005/minauth/internal/admin"
	"github.com/dmitrijs2005/minauth/internal/buildinfo"
	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app := admin.NewApp(cfg, logger)

	if err := app.Run(context.Background(), positionalArgs(os.Args[1:])); err != nil {
		log.Fatalf("%v", err)
	}
}

// positionalArgs returns the leading arguments up to the first flag;
// everything after that belongs to the config layer.
func positionalArgs(args []string) []string {
	var pos []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			break
		}
		pos = append(pos, a)
	}
	return pos
}
