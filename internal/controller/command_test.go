package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ryanolf/sonos-manager/internal/ctlerrors"
)

func TestDoZoneActionDeliversCommandAndReply(t *testing.T) {
	closed := make(chan struct{})
	facade, commands := newFacade(1, closed)

	go func() {
		cmd := <-commands
		require.Equal(t, "Kitchen", cmd.room)
		cmd.reply <- Ok()
	}()

	resp, err := facade.DoZoneAction(context.Background(), "Kitchen", Action{Kind: ActionPlay})
	require.NoError(t, err)
	require.Equal(t, ResponseOk, resp.Kind)
}

func TestDoZoneActionReturnsControllerOfflineWhenClosedBeforeSend(t *testing.T) {
	closed := make(chan struct{})
	close(closed)
	facade, _ := newFacade(0, closed)

	_, err := facade.DoZoneAction(context.Background(), "Kitchen", Action{Kind: ActionPlay})
	require.ErrorIs(t, err, ctlerrors.ErrControllerOffline)
}

func TestDoZoneActionReturnsMessageRecvWhenClosedWhileWaitingForReply(t *testing.T) {
	closed := make(chan struct{})
	facade, commands := newFacade(1, closed)

	go func() {
		<-commands
		close(closed)
	}()

	_, err := facade.DoZoneAction(context.Background(), "Kitchen", Action{Kind: ActionPlay})
	require.ErrorIs(t, err, ctlerrors.ErrMessageRecv)
}

func TestDoZoneActionRespectsContextCancellation(t *testing.T) {
	closed := make(chan struct{})
	facade, _ := newFacade(0, closed)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := facade.DoZoneAction(ctx, "Kitchen", Action{Kind: ActionPlay})
	require.Error(t, err)
}
