// Command tsipctl decodes, encodes and watches Trimble Standard Interface Protocol packets.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tsipctl",
		Short: "Trimble Standard Interface Protocol tool",
		Long: `tsipctl converts between TSIP packets and their field values.

Packets are written as hex (8fab0003ed53...) or, with --base64, in the base64 form
that the tracker logs.  De-framed packets start with the packet code; framed packets
start with DLE and end with DLE ETX, and may be decoded with --framed.

Packet identities are written as a code ("26"), or a code and sub-code ("8f/ab" or
"8fab").`,
		SilenceUsage: true,
	}
	root.AddCommand(newDecodeCmd(), newEncodeCmd(), newCatalogCmd(), newListenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
