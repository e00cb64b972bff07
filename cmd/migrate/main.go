package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/pharma-transfers/internal/infrastructure/postgres"
	"github.com/jhoicas/pharma-transfers/pkg/config"
	"github.com/jhoicas/pharma-transfers/pkg/logger"
)

func main() {
	logLevel := flag.String("log-level", "info", "nivel de log (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: *logLevel})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer func() { _ = m.Close() }()

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if len(args) < 2 {
			log.Fatal().Msg("uso: migrate steps <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal().Str("n", args[1]).Msg("steps requiere un entero (negativo revierte)")
		}
		err = m.Steps(n)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("migración fallida")
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `uso: migrate [-log-level=info] <comando>

comandos:
  up          aplica todas las migraciones pendientes
  down        revierte todas las migraciones
  steps <n>   aplica n migraciones (n negativo revierte)`)
}
