package adapter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sergev/floppycore/config"
	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/reconcile"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan CYLINDER HEAD",
	Short: "Reconcile a single cylinder/head down to one best-effort track",
	Long: `Run the scan/read/merge loop against one physical cylinder and head,
reporting how many sectors were recovered with good data.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if floppyAdapter == nil {
			cobra.CheckErr(fmt.Errorf("adapter not available"))
		}
		ctrl := floppyAdapter.Controller()
		if ctrl == nil {
			cobra.CheckErr(fmt.Errorf("connected adapter does not support single-track scanning"))
		}

		cyl, err := strconv.Atoi(args[0])
		if err != nil {
			cobra.CheckErr(fmt.Errorf("invalid cylinder %q: %w", args[0], err))
		}
		head, err := strconv.Atoi(args[1])
		if err != nil {
			cobra.CheckErr(fmt.Errorf("invalid head %q: %w", args[1], err))
		}

		policy := reconcile.DeviceReadingPolicy{
			Rescans:        config.Rescans,
			Retries:        config.Retries,
			Paranoia:       config.Paranoia,
			StabilityLevel: config.StabilityLevel,
		}
		r := reconcile.New(ctrl, policy, fdtype.Rate250K, fdtype.EncodingMFM)

		result, err := r.Reconcile(context.Background(), fdtype.CylHead{Cyl: cyl, Head: head}, fdtype.Rate250K, fdtype.EncodingMFM)
		if err != nil {
			fmt.Printf("reconcile incomplete: %v\n", err)
		}

		fmt.Printf("cylinder %d head %d: %d sector(s) recovered, %d with good data\n",
			cyl, head, result.Track.Len(), len(result.Track.GoodSectors()))
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
