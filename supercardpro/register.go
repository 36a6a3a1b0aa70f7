package supercardpro

import "github.com/sergev/floppycore/adapter"

func init() {
	adapter.RegisterAdapter(VendorID, ProductID, NewClient)
}
