// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events delivers on-chain configuration notifications to
// registered node subsystems.
package events

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chainflow/chainflowgo/utils/logging"
)

var (
	ErrAlreadyNotified = errors.New("initial configs were already broadcast")

	_ SubscriptionService = (*Service)(nil)
)

// ConfigNotification carries the ledger version an on-chain config
// snapshot was read at.
type ConfigNotification struct {
	SyncedVersion uint64
}

// SubscriptionService is the interface the state sync driver factory uses
// to broadcast the initial on-chain configs before the driver starts.
type SubscriptionService interface {
	// NotifyInitialConfigs broadcasts the config snapshot at
	// [syncedVersion] to every subscriber. Must succeed exactly once,
	// before any sync activity begins.
	NotifyInitialConfigs(syncedVersion uint64) error
}

// Service fans configuration notifications out to named subscribers.
type Service struct {
	log logging.Logger

	lock        sync.Mutex
	subscribers map[string]chan ConfigNotification
	notified    bool
}

func NewService(log logging.Logger) *Service {
	return &Service{
		log:         log,
		subscribers: make(map[string]chan ConfigNotification),
	}
}

// Subscribe registers [name] to receive config notifications. Must be
// called before NotifyInitialConfigs.
func (s *Service) Subscribe(name string) (<-chan ConfigNotification, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subscribers[name]; ok {
		return nil, fmt.Errorf("subscriber %q already registered", name)
	}

	// Capacity 1 so the initial broadcast never blocks on a subscriber
	// that hasn't started consuming yet.
	ch := make(chan ConfigNotification, 1)
	s.subscribers[name] = ch
	return ch, nil
}

func (s *Service) NotifyInitialConfigs(syncedVersion uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.notified {
		return ErrAlreadyNotified
	}

	notification := ConfigNotification{SyncedVersion: syncedVersion}
	for name, ch := range s.subscribers {
		select {
		case ch <- notification:
		default:
			return fmt.Errorf("couldn't deliver initial configs to subscriber %q", name)
		}
	}
	s.notified = true

	s.log.Info("notified subscribers of initial on-chain configs",
		zap.Uint64("syncedVersion", syncedVersion),
		zap.Int("numSubscribers", len(s.subscribers)),
	)
	return nil
}
