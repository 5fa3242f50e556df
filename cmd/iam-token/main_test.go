package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitScopes(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"iam:read", "iam:write"}, splitScopes("iam:read, iam:write,"))
	require.Nil(t, splitScopes(" , "))
}
