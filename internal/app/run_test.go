package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"spikeradar/internal/model"
)

func TestHandleCommand(t *testing.T) {
	a, _ := newDemoApp(t)
	dash, closeSession, err := a.session(context.Background(), a.Config, nil)
	require.NoError(t, err)
	defer closeSession()
	require.NoError(t, dash.Load(context.Background()))

	quit, msg := handleCommand(dash, "a 1")
	require.False(t, quit)
	require.Equal(t, "alert 1 acted on", msg)

	_, msg = handleCommand(dash, "act 1")
	require.Equal(t, "alert 1 is not pending", msg)

	_, msg = handleCommand(dash, "d 2")
	require.Equal(t, "alert 2 dismissed", msg)

	_, msg = handleCommand(dash, "e 3")
	require.Empty(t, msg)
	require.Contains(t, dash.View().Expanded, model.AlertID("3"))

	_, msg = handleCommand(dash, "e 99")
	require.Equal(t, "alert 99 not found", msg)

	_, msg = handleCommand(dash, "a 99")
	require.Equal(t, "alert 99 not found", msg)

	_, msg = handleCommand(dash, "d 99")
	require.Equal(t, "alert 99 not found", msg)

	_, msg = handleCommand(dash, "d 1")
	require.Equal(t, "alert 1 is not pending", msg)

	_, msg = handleCommand(dash, "dismiss")
	require.Equal(t, "usage: dismiss <id>", msg)

	_, msg = handleCommand(dash, "frobnicate")
	require.Equal(t, `unknown command "frobnicate"; type h for help`, msg)

	_, msg = handleCommand(dash, "   ")
	require.Empty(t, msg)

	_, msg = handleCommand(dash, "h")
	require.Contains(t, msg, "act on an alert")

	dash.Flush()
	require.Equal(t, 1, dash.Stats().Pending)

	quit, _ = handleCommand(dash, "q")
	require.True(t, quit)
}
