package kryoflux

import "github.com/sergev/floppycore/reconcile"

// Controller reports that this adapter does not yet expose a per-track
// reconcile.Controller: KryoFlux capture here only supports the whole-disk
// stream-file Read path, not an addressable single-track rescan, so there
// is nothing meaningful to hand a DualTrackReconciler.
func (c *Client) Controller() reconcile.Controller {
	return nil
}
