// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainflow/chainflowgo/utils/logging"
	"github.com/chainflow/chainflowgo/utils/worker"
)

// Runtimes bundles the execution contexts state sync depends on for the
// node process's lifetime. Keeping the contexts named and separate makes
// it possible to attribute scheduled work to the subsystem that owns it.
//
// The bundle is exclusively owned; no other component may schedule work
// onto these contexts directly.
type Runtimes struct {
	log     logging.Logger
	factory *Factory

	dataClient       worker.Pool
	storageService   worker.Pool
	streamingService worker.Pool
}

// NewRuntimes takes ownership of the given execution contexts and starts
// them. The contexts are torn down only at process shutdown.
func NewRuntimes(
	log logging.Logger,
	factory *Factory,
	dataClient worker.Pool,
	storageService worker.Pool,
	streamingService worker.Pool,
) *Runtimes {
	dataClient.Start()
	storageService.Start()
	streamingService.Start()

	return &Runtimes{
		log:              log,
		factory:          factory,
		dataClient:       dataClient,
		storageService:   storageService,
		streamingService: streamingService,
	}
}

// BlockUntilCompleted blocks the calling thread until the driver's first
// completion signal (bootstrap or recovery) resolves. It is intended for
// process-startup call sites outside the asynchronous runtime.
//
// A failure is a node-initialization failure: the caller must terminate
// the startup sequence rather than proceed partially initialized.
func (r *Runtimes) BlockUntilCompleted() error {
	client := r.factory.CreateDriverClient()
	defer client.Close()

	if err := client.WaitUntilSettled(context.Background()); err != nil {
		return fmt.Errorf("state sync initialization failed: %w", err)
	}
	return nil
}

// Shutdown stops the driver and every owned execution context. All
// contexts stop accepting new work before Shutdown returns; no teardown
// order is guaranteed beyond that.
func (r *Runtimes) Shutdown() {
	r.factory.Shutdown()

	eg := errgroup.Group{}
	for _, pool := range []worker.Pool{r.dataClient, r.storageService, r.streamingService} {
		pool := pool
		eg.Go(func() error {
			pool.Shutdown()
			r.log.Debug("stopped runtime",
				zap.String("name", pool.Name()),
			)
			return nil
		})
	}
	_ = eg.Wait()
}
