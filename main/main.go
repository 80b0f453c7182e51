// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/chainflow/chainflowgo/config"
	"github.com/chainflow/chainflowgo/database"
	"github.com/chainflow/chainflowgo/database/leveldb"
	"github.com/chainflow/chainflowgo/database/memdb"
	"github.com/chainflow/chainflowgo/database/prefixdb"
	"github.com/chainflow/chainflowgo/statesync/driver"
	"github.com/chainflow/chainflowgo/statesync/events"
	"github.com/chainflow/chainflowgo/statesync/handlers"
	"github.com/chainflow/chainflowgo/statesync/metadata"
	"github.com/chainflow/chainflowgo/utils/logging"
	"github.com/chainflow/chainflowgo/utils/worker"
)

var metadataPrefix = []byte("statesync")

// main is the primary entry point to the node.
func main() {
	fs := config.BuildFlagSet()
	v, err := config.BuildViper(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't configure flags: %s\n", err)
		os.Exit(1)
	}

	nodeConfig, err := config.GetConfig(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't load node config: %s\n", err)
		os.Exit(1)
	}

	os.Exit(run(nodeConfig))
}

func run(nodeConfig config.Config) int {
	logFactory := logging.NewFactory(nodeConfig.LoggingConfig)
	defer logFactory.Close()

	log, err := logFactory.Make("main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't make main logger: %s\n", err)
		return 1
	}

	db, err := newDatabase(nodeConfig, log)
	if err != nil {
		log.Error("couldn't open database",
			zap.String("dbType", nodeConfig.DBType),
			zap.Error(err),
		)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("couldn't close database",
				zap.Error(err),
			)
		}
	}()

	metadataStore := metadata.New(prefixdb.New(metadataPrefix, db))
	subscriptions := events.NewService(log)
	consensusClient, consensusHandler := handlers.NewConsensusNotificationPair()
	defer consensusClient.Close()

	factory, err := driver.NewFactory(
		nodeConfig.DriverConfig,
		log,
		prometheus.DefaultRegisterer,
		metadataStore,
		driver.NewMetadataSynchronizer(metadataStore),
		subscriptions,
		handlers.NoOpMempoolNotifier{},
		consensusHandler,
	)
	if err != nil {
		log.Error("couldn't start the state sync driver",
			zap.Error(err),
		)
		return 1
	}

	runtimes, err := newRuntimes(nodeConfig, log, factory)
	if err != nil {
		log.Error("couldn't start the state sync runtimes",
			zap.Error(err),
		)
		factory.Shutdown()
		return 1
	}
	defer runtimes.Shutdown()

	if err := runtimes.BlockUntilCompleted(); err != nil {
		log.Error("node initialization failed",
			zap.Error(err),
		)
		return 1
	}
	log.Info("node bootstrapped",
		zap.Uint64("waypointVersion", nodeConfig.DriverConfig.WaypointVersion),
	)

	// Run until the process is told to stop.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	signal.Stop(signals)

	log.Info("shutting down",
		zap.String("signal", sig.String()),
	)
	return 0
}

func newDatabase(nodeConfig config.Config, log logging.Logger) (database.Database, error) {
	switch nodeConfig.DBType {
	case config.LevelDBName:
		return leveldb.New(nodeConfig.DBDir, log)
	case config.MemDBName:
		return memdb.New(), nil
	default:
		return nil, fmt.Errorf("unknown database type: %q", nodeConfig.DBType)
	}
}

func newRuntimes(nodeConfig config.Config, log logging.Logger, factory *driver.Factory) (*driver.Runtimes, error) {
	dataClient, err := worker.NewPool("data-client", nodeConfig.DataClientWorkers)
	if err != nil {
		return nil, err
	}
	storageService, err := worker.NewPool("storage-service", nodeConfig.StorageServiceWorkers)
	if err != nil {
		return nil, err
	}
	streamingService, err := worker.NewPool("streaming-service", nodeConfig.StreamingServiceWorkers)
	if err != nil {
		return nil, err
	}
	return driver.NewRuntimes(log, factory, dataClient, storageService, streamingService), nil
}
