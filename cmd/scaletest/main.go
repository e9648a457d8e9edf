package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/giantswarm/microerror"
	"github.com/spf13/afero"

	"github.com/giantswarm/scaletests/command"
)

func main() {
	err := mainE()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func mainE() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	c := command.Config{
		Fs:     afero.NewOsFs(),
		Stderr: os.Stderr,
		Stdout: os.Stdout,
	}

	root, err := command.New(c)
	if err != nil {
		return microerror.Mask(err)
	}

	err = root.ExecuteContext(ctx)
	if err != nil {
		return microerror.Mask(err)
	}

	return nil
}
