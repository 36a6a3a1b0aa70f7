package greaseweazle

import "github.com/sergev/floppycore/reconcile"

// Controller returns c itself: Client already implements reconcile.Controller
// via ReadTrack/TimedScan in reconcile_controller.go.
func (c *Client) Controller() reconcile.Controller {
	return c
}
