// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainflow/chainflowgo/utils/logging"
)

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	require := require.New(t)

	service := NewService(logging.NoLog{})

	mempool, err := service.Subscribe("mempool")
	require.NoError(err)
	api, err := service.Subscribe("api")
	require.NoError(err)

	_, err = service.Subscribe("api")
	require.Error(err)

	require.NoError(service.NotifyInitialConfigs(100))

	notification := <-mempool
	require.Equal(uint64(100), notification.SyncedVersion)
	notification = <-api
	require.Equal(uint64(100), notification.SyncedVersion)
}

func TestBroadcastIsOneTime(t *testing.T) {
	require := require.New(t)

	service := NewService(logging.NoLog{})
	require.NoError(service.NotifyInitialConfigs(1))

	err := service.NotifyInitialConfigs(2)
	require.ErrorIs(err, ErrAlreadyNotified)
}

func TestBroadcastFailsOnFullSubscriber(t *testing.T) {
	require := require.New(t)

	service := NewService(logging.NoLog{})
	ch, err := service.Subscribe("slow")
	require.NoError(err)

	// Fill the subscriber's buffer so delivery fails.
	service.subscribers["slow"] <- ConfigNotification{SyncedVersion: 1}

	err = service.NotifyInitialConfigs(2)
	require.Error(err)
	require.NotErrorIs(err, ErrAlreadyNotified)

	// The buffered element is still the pre-filled one.
	notification := <-ch
	require.Equal(uint64(1), notification.SyncedVersion)
}
