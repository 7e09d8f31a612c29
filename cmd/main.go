package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prhist/github-pr-history/config"
	"github.com/prhist/github-pr-history/internal/api"
	"github.com/prhist/github-pr-history/internal/db"
	"github.com/prhist/github-pr-history/internal/parse"
	"github.com/prhist/github-pr-history/internal/pipeline"
)

func main() {
	skipCommits := flag.Bool("skip-commits", false, "Skip fetching and storing commit history")
	since := flag.String("since", "", "Only fetch commits after this RFC 3339 timestamp")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	setupLogger(*debug)

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <owner> <repo>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s acme widget\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	owner, name := flag.Arg(0), flag.Arg(1)

	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	client, err := api.New(cfg.GithubToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create github client")
	}

	p := pipeline.New(client, parse.New(client), db.NewWriter(database))
	if *since != "" {
		bound, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			log.Fatal().Err(err).Str("since", *since).Msg("invalid -since timestamp")
		}
		p.Since = bound
	}

	start := time.Now()
	if err := p.Run(context.Background(), owner, name, !*skipCommits); err != nil {
		log.Fatal().Err(err).Str("owner", owner).Str("repo", name).Msg("pipeline failed")
	}
	log.Info().Dur("duration", time.Since(start)).Msg("done")
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
