// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a Go client for the LiftLog API.

It exists mainly to run a timer.Syncer against a remote server: TimerStore
implements timer.Store over the timer endpoints, and Subscribe turns the
server's event stream into a channel that Syncer.Follow consumes.

	c, err := client.New("127.0.0.1:3318")
	if err != nil {
		return err
	}
	if _, err := c.Login(ctx, password); err != nil {
		return err
	}

	timers := c.Timers()
	s := timer.NewSyncer(ctx, "workout", timers)
	updates, err := timers.Subscribe(ctx, "workout")
	if err != nil {
		return err
	}
	go s.Follow(ctx, updates)

Non-2xx responses come back as *APIError carrying the server's message.
*/
package client
