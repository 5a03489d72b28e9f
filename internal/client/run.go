package client

import (
	"context"
	"errors"
	"time"

	"netpong/internal/protocol"
)

type KeyEvent struct {
	Key     protocol.Key
	Pressed bool
}

// InputSource is polled once per frame for key transitions.
type InputSource interface {
	Keys(v View) []KeyEvent
}

// Renderer draws a frame.
type Renderer interface {
	Draw(v View)
}

// Run drives the client at fps frames per second until the session ends or ctx is
// cancelled. Cancelling counts as closing the window: the server is told the player left.
func (c *Client) Run(ctx context.Context, fps int, in InputSource, out Renderer) error {
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.Leave()
		case <-ticker.C:
		}

		if err := c.Update(); err != nil {
			return err
		}

		v := c.View()
		var errs []error
		for _, ev := range in.Keys(v) {
			if ev.Pressed {
				errs = append(errs, c.KeyDown(ev.Key))
			} else {
				errs = append(errs, c.KeyUp(ev.Key))
			}
		}
		if err := errors.Join(errs...); err != nil {
			c.log.Debug().Err(err).Msg("send input")
		}

		if out != nil {
			out.Draw(v)
		}
	}
}
