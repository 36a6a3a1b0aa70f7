// Command floppycore is the CLI entry point: it wires the registered
// device adapters into adapter.Execute, which dispatches status/read/
// write/format/erase/scan subcommands against whichever USB floppy
// controller is attached.
package main

import (
	"github.com/sergev/floppycore/adapter"

	_ "github.com/sergev/floppycore/greaseweazle"
	_ "github.com/sergev/floppycore/kryoflux"
	_ "github.com/sergev/floppycore/supercardpro"
)

func main() {
	adapter.Execute()
}
