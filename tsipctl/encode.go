package main

import (
	"fmt"
	"strconv"

	"github.com/jrockway/tsip/tsip"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var framed bool
	cmd := &cobra.Command{
		Use:   "encode ID [FIELD...]",
		Short: "Encode a packet from its field values",
		Long: `Encode a packet from its field values and print it as hex.

The fields are parsed according to the packet's catalogued layout, so
"tsipctl encode 8e/4f 0.1" sets the PPS width to 100ms.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := encode(tsip.Default, args[0], args[1:])
			if err != nil {
				return err
			}
			if framed {
				raw = tsip.Frame(raw)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%x\n", raw)
			return err
		},
	}
	cmd.Flags().BoolVar(&framed, "framed", false, "add DLE framing and stuffing")
	return cmd
}

// encode packs the packet named by id, parsing fields according to its layout.
func encode(r *tsip.Registry, id string, fields []string) ([]byte, error) {
	pid, err := tsip.ParseID(id)
	if err != nil {
		return nil, err
	}
	layout, err := r.ForPack(pid)
	if err != nil {
		return nil, err
	}
	kinds := layout.Kinds()
	if got, want := len(fields), len(kinds); got != want {
		return nil, fmt.Errorf("packet %v takes %d fields (%v), got %d: %w", pid, want, layout, got, tsip.ErrFieldCount)
	}
	values := make([]interface{}, len(fields))
	for i, f := range fields {
		v, err := parseField(kinds[i], f)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		values[i] = v
	}
	p, err := tsip.New(pid, values...)
	if err != nil {
		return nil, err
	}
	return r.Pack(p)
}

// parseField converts a command-line argument to the Go type of kind k.
func parseField(k tsip.Kind, s string) (interface{}, error) {
	bits := k.Size() * 8
	switch k {
	case tsip.Int8, tsip.Int16, tsip.Int32, tsip.Int64:
		v, err := strconv.ParseInt(s, 0, bits)
		if err != nil {
			return nil, err
		}
		switch k {
		case tsip.Int8:
			return int8(v), nil
		case tsip.Int16:
			return int16(v), nil
		case tsip.Int32:
			return int32(v), nil
		}
		return v, nil

	case tsip.Uint8, tsip.Uint16, tsip.Uint32, tsip.Uint64:
		v, err := strconv.ParseUint(s, 0, bits)
		if err != nil {
			return nil, err
		}
		switch k {
		case tsip.Uint8:
			return uint8(v), nil
		case tsip.Uint16:
			return uint16(v), nil
		case tsip.Uint32:
			return uint32(v), nil
		}
		return v, nil

	case tsip.Float32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		return float32(v), nil

	case tsip.Float64:
		return strconv.ParseFloat(s, 64)
	}
	return nil, fmt.Errorf("cannot parse a %v field from the command line", k)
}
