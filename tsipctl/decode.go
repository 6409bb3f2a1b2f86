package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/jrockway/tsip/tsip"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var useBase64, framed bool
	cmd := &cobra.Command{
		Use:   "decode PACKET...",
		Short: "Decode packets and print their fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				raw, err := parseBytes(arg, useBase64)
				if err != nil {
					return err
				}
				packets := [][]byte{raw}
				if framed {
					packets = deframe(raw)
					if len(packets) == 0 {
						return fmt.Errorf("%q: no complete frames", arg)
					}
				}
				for _, packet := range packets {
					if err := describe(cmd.OutOrStdout(), tsip.Default, packet); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useBase64, "base64", false, "packets are base64 rather than hex")
	cmd.Flags().BoolVar(&framed, "framed", false, "packets include DLE framing and stuffing")
	return cmd
}

// parseBytes reads a packet written as hex (spaces and colons allowed) or base64.
func parseBytes(s string, useBase64 bool) ([]byte, error) {
	if useBase64 {
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("parse base64 %q: %w", s, err)
		}
		return b, nil
	}
	clean := strings.NewReplacer(" ", "", ":", "", "0x", "").Replace(s)
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("parse hex %q: %w", s, err)
	}
	return b, nil
}

// deframe returns every complete packet in a framed byte stream.
func deframe(raw []byte) [][]byte {
	// Every frame is at least three bytes, so the channel never fills.
	p := tsip.NewPacketizer(len(raw)/3 + 1)
	p.Write(raw) // never returns an error
	var result [][]byte
	for {
		select {
		case packet := <-p.C:
			result = append(result, packet)
		default:
			return result
		}
	}
}

// describe decodes a de-framed packet and prints one line about it.
func describe(w io.Writer, r *tsip.Registry, packet []byte) error {
	res, err := r.Classify(packet)
	if err != nil {
		return fmt.Errorf("decode %x: %w", packet, err)
	}
	p, err := r.Unpack(packet)
	if err != nil {
		return fmt.Errorf("decode %x: %w", packet, err)
	}
	name := r.Name(res.ID)
	if name == "" {
		name = "unknown"
	}
	_, err = fmt.Fprintf(w, "%v\t%s (%v)\n", p, name, res.Resolution)
	return err
}
