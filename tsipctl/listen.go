package main

import (
	"fmt"
	"io"
	"log"

	"github.com/jrockway/tsip/serialport"
	"github.com/jrockway/tsip/tsip"
	"github.com/spf13/cobra"
)

func newListenCmd() *cobra.Command {
	var (
		portName string
		opts     = serialport.DefaultOptions()
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print packets as they arrive from a receiver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if portName == "" {
				return fmt.Errorf("--port is required")
			}
			port, err := serialport.Open(portName, opts)
			if err != nil {
				return err
			}
			defer port.Close()
			fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s at %v\n", portName, opts)

			p := tsip.NewPacketizer(16)
			errc := make(chan error, 1)
			go func() {
				_, err := io.Copy(p, port)
				if err == nil {
					err = io.EOF
				}
				errc <- err
			}()

			out := cmd.OutOrStdout()
			for {
				select {
				case packet := <-p.C:
					if err := describe(out, tsip.Default, packet); err != nil {
						log.Printf("%v", err)
					}
				case err := <-errc:
					return fmt.Errorf("read %s: %w", portName, err)
				}
			}
		},
	}
	cmd.Flags().StringVarP(&portName, "port", "p", "", "serial port device")
	cmd.Flags().IntVarP(&opts.BaudRate, "baud", "b", opts.BaudRate, "baud rate")
	cmd.Flags().StringVar(&opts.Parity, "parity", opts.Parity, "parity (N, E or O)")
	return cmd
}
