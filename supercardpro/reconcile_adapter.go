package supercardpro

import "github.com/sergev/floppycore/reconcile"

// Controller reports that this adapter does not yet expose a per-track
// reconcile.Controller, for the same reason as the KryoFlux adapter: its
// capture path here is whole-disk only.
func (c *Client) Controller() reconcile.Controller {
	return nil
}
