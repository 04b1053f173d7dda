package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/lgen/internal/diag"
	"github.com/aledsdavies/lgen/pkgs/binstream"
	"github.com/aledsdavies/lgen/pkgs/flatcodec"
)

var (
	formatFrom string
	formatTo   string
)

// formatCmd transcodes a tagged-point stream between the textual flat
// format and the binary CBOR format, using the two wire encodings
// pkgs/flatcodec and pkgs/binstream offer.
var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Transcode a tagged-point stream between flat text and CBOR",
	Args:  cobra.NoArgs,
	RunE:  runFormat,
}

func init() {
	formatCmd.Flags().StringVar(&formatFrom, "from", "flat", "input format: flat|cbor")
	formatCmd.Flags().StringVar(&formatTo, "to", "cbor", "output format: flat|cbor")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	sink := diag.Sink(diag.Noop{})
	if verbose {
		sink = diag.StderrSink{Write: func(s string) { stderrf("%s", s) }}
	}

	switch formatFrom {
	case "flat":
		switch formatTo {
		case "cbor":
			return binstream.Encode(os.Stdout, flatcodec.Decode(os.Stdin, sink))
		case "flat":
			return flatcodec.Encode(os.Stdout, flatcodec.Decode(os.Stdin, sink))
		default:
			return fatalf("unknown --to format %q", formatTo)
		}
	case "cbor":
		switch formatTo {
		case "flat":
			return flatcodec.Encode(os.Stdout, binstream.Decode(os.Stdin, sink))
		case "cbor":
			return binstream.Encode(os.Stdout, binstream.Decode(os.Stdin, sink))
		default:
			return fatalf("unknown --to format %q", formatTo)
		}
	default:
		return fmt.Errorf("unknown --from format %q", formatFrom)
	}
}
