// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

// Keys of every recognized flag, viper entry, and config file field.
const (
	ConfigFileKey = "config-file"

	LogLevelKey        = "log-level"
	LogDisplayLevelKey = "log-display-level"
	LogDirKey          = "log-dir"

	DBTypeKey = "db-type"
	DBDirKey  = "db-dir"

	WaypointVersionKey        = "waypoint-version"
	DedicatedDriverRuntimeKey = "dedicated-driver-runtime"

	DataClientWorkersKey       = "data-client-workers"
	StorageServiceWorkersKey   = "storage-service-workers"
	StreamingServiceWorkersKey = "streaming-service-workers"
)
