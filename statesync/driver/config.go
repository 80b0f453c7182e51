// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

// Config defines the configuration of the state sync driver.
type Config struct {
	// WaypointVersion is the ledger version the node must reach before it
	// is considered bootstrapped.
	WaypointVersion uint64 `json:"waypointVersion"`

	// DedicatedRuntime runs the driver's control loop on its own named
	// execution context instead of a caller-provided one.
	DedicatedRuntime bool `json:"dedicatedRuntime"`
}

func DefaultConfig() Config {
	return Config{
		WaypointVersion:  0,
		DedicatedRuntime: true,
	}
}
