package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/projectmoil/gateway/internal/adapters/glossarystore"
	"github.com/projectmoil/gateway/internal/adapters/regexstore"
	"github.com/projectmoil/gateway/internal/config"
	"github.com/projectmoil/gateway/internal/contextstore"
	"github.com/projectmoil/gateway/internal/events"
	"github.com/projectmoil/gateway/internal/gateway"
	"github.com/projectmoil/gateway/internal/ports"
	"github.com/projectmoil/gateway/internal/translate"
	"github.com/projectmoil/gateway/internal/upstream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the translation gateway and block until interrupted",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	snap, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store := config.New(snap)

	logger := log.New(os.Stdout, "", log.LstdFlags)
	sink := events.NewStdSink(logger)

	contexts := contextstore.New()

	var glossary ports.GlossaryProvider
	var regex ports.RegexProvider
	if snap.EnableGlossary {
		g := glossarystore.New()
		if err := g.SetPath(context.Background(), snap.GlossaryPath); err != nil {
			return fmt.Errorf("open glossary store: %w", err)
		}
		r := regexstore.New()
		if err := r.Open(context.Background(), snap.GlossaryPath); err != nil {
			return fmt.Errorf("open regex store: %w", err)
		}
		glossary, regex = g, r
	}
	store.SetGlossaryProvider(glossary)

	svc := translate.New(store, contexts, upstream.New(), glossary, regex, sink)
	gw := gateway.New(store, svc, contexts, sink)

	if err := gw.Start(); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go func() {
		err := config.Watch(watchCtx, cfgPath, store, 300*time.Millisecond,
			func(config.Snapshot) { sink.Log("configuration reloaded") },
			func(err error) { sink.Log("configuration reload failed: " + err.Error()) },
		)
		if err != nil {
			sink.Log("configuration watcher stopped: " + err.Error())
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	cancelWatch()
	return gw.Stop()
}
