package fmerror

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnownCode(t *testing.T) {
	err := Error{Code: 401}
	require.Equal(t, "No records match the request (401)", err.Error())
	require.Equal(t, "No records match the request", err.Description())
}

func TestUnknownCode(t *testing.T) {
	err := Error{Code: 31337}
	require.Contains(t, err.Error(), "31337")
	require.Equal(t, "", err.Description())
}

func TestIsNoMatch(t *testing.T) {
	require.True(t, IsNoMatch(Error{Code: 401}))
	require.False(t, IsNoMatch(Error{Code: 105}))
	require.False(t, IsNoMatch(fmt.Errorf("some other error")))
}
