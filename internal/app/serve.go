// ABOUTME: Headless remote control mode
// ABOUTME: Runs the websocket remote and the store watcher until cancelled
package app

import (
	"context"

	"github.com/hxtool/hxplay/internal/remote"
	"github.com/hxtool/hxplay/pkg/playback"
)

// NewRemote creates a remote server driving the session player
func (s *Session) NewRemote() *remote.Server {
	srv := remote.New(remote.Config{
		Addr:      s.config.Remote.Addr,
		Name:      s.config.Remote.Name,
		Store:     s.path,
		Advertise: s.config.Remote.Advertise,
	}, s.player, s.Lookup, s.log)
	s.OnStateChange(func(playback.State) { srv.Notify() })
	return srv
}

// Serve runs the remote endpoint and reloads the store on change
func (s *Session) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.Watch(ctx, DefaultSettle)

	srv := s.NewRemote()
	return srv.ListenAndServe(ctx)
}
