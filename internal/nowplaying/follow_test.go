package nowplaying

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/nowplaying/internal/playback"
)

func TestSync(t *testing.T) {
	f := newFixture(t)
	f.player.SetMediaSource(songA())

	f.player.SetSnapshot(playingSnapshot())
	f.ctrl.Sync()
	f.ctrl.Wait()
	require.Len(t, f.notifier.Posts(), 1)
	assert.True(t, f.ctrl.Subscription().Registered())

	f.player.SetSnapshot(playback.Snapshot{State: playback.StateEnded})
	f.ctrl.Sync()
	_, cancels := f.notifier.Counts()
	assert.Equal(t, 1, cancels)
	assert.False(t, f.ctrl.Subscription().Registered())
}

func TestSync_PlayerGone(t *testing.T) {
	f := newFixture(t)
	f.player.SetMediaSource(songA())
	f.player.SetSnapshot(playingSnapshot())
	f.ctrl.Sync()
	f.ctrl.Wait()

	f.player.SetAbsent(true)
	f.ctrl.Sync()

	assert.False(t, f.ctrl.Subscription().Registered())
}

func TestFollow(t *testing.T) {
	f := newFixture(t)
	f.player.SetMediaSource(songA())
	sub := playback.NewSubscription()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		f.ctrl.Follow(ctx, sub)
		close(done)
	}()

	f.player.SetSnapshot(playingSnapshot())
	sub.Send(playback.Change{Kind: playback.ChangeState})
	require.Eventually(t, f.ctrl.Subscription().Registered, time.Second, 5*time.Millisecond)

	f.player.SetSnapshot(playback.Snapshot{State: playback.StateIdle})
	sub.Send(playback.Change{Kind: playback.ChangeState})
	require.Eventually(t, func() bool {
		return !f.ctrl.Subscription().Registered()
	}, time.Second, 5*time.Millisecond)

	sub.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after subscription closed")
	}
}

func TestFollow_ContextCanceled(t *testing.T) {
	f := newFixture(t)
	sub := playback.NewSubscription()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.ctrl.Follow(ctx, sub)

	assert.Empty(t, f.notifier.Posts())
}
