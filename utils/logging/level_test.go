// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelRoundTrip(t *testing.T) {
	require := require.New(t)

	for _, level := range []Level{Verbo, Debug, Trace, Info, Warn, Error, Fatal, Off} {
		parsed, err := ToLevel(level.String())
		require.NoError(err)
		require.Equal(level, parsed)

		parsed, err = ToLevel(level.LowerString())
		require.NoError(err)
		require.Equal(level, parsed)
	}
}

func TestToLevelUnknown(t *testing.T) {
	require := require.New(t)

	_, err := ToLevel("nope")
	require.Error(err)
}

func TestLevelOrdering(t *testing.T) {
	require := require.New(t)

	require.Less(int(Verbo), int(Debug))
	require.Less(int(Debug), int(Trace))
	require.Less(int(Trace), int(Info))
	require.Less(int(Info), int(Warn))
	require.Less(int(Warn), int(Error))
	require.Less(int(Error), int(Fatal))
	require.Less(int(Fatal), int(Off))
}
