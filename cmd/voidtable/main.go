package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	tablecmd "github.com/lunargale/voidtable/internal/cmd/voidtable"
	"github.com/lunargale/voidtable/internal/platform/config"
)

func main() {
	cfg, err := tablecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[VOIDTABLE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tablecmd.Run(ctx, cfg); err != nil {
		log.Fatalf("run table: %v", err)
	}
}
