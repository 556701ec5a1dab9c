package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/i4/internal/protocol"
	"github.com/danmuck/i4/internal/protocol/frame"
	"github.com/danmuck/i4/internal/protocol/packet"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var asFrame, outbound bool
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON value from stdin as I3 notation",
		Long: `Read one JSON value from stdin and print it as I3 notation.

Maps are written as {"map": [["key", value], ...]} so member order is kept.

Examples:
  echo '["tell",5,"Mud","bob","*i4","alice","hi"]' | i4ctl encode
  echo '["tell",0,"Mud","bob","*i4","alice","hi"]' | i4ctl encode --outbound --frame`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			v, err := protocol.DecodeJSON(data)
			if err != nil {
				return err
			}

			var text string
			var b []byte
			if outbound {
				p, err := packet.BuildOutbound(v)
				if err != nil {
					return err
				}
				text, b = p.Text(), p.Bytes()
			} else {
				if text, err = protocol.Encode(v); err != nil {
					return err
				}
				if asFrame {
					if b, err = frame.ToFrame(text); err != nil {
						return err
					}
				}
			}

			out := cmd.OutOrStdout()
			if asFrame {
				_, err = fmt.Fprintln(out, hex.EncodeToString(b))
				return err
			}
			_, err = fmt.Fprintln(out, text)
			return err
		},
	}
	cmd.Flags().BoolVar(&asFrame, "frame", false, "print the mudmode frame as hex")
	cmd.Flags().BoolVar(&outbound, "outbound", false, "apply packet envelope rules")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var asFrame, isHex bool
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode I3 notation from stdin as JSON",
		Long: `Read I3 notation (or a mudmode frame with --frame) from stdin and print
it as JSON.

Examples:
  echo '({"tell",5,"Mud","bob","*i4","alice","hi"})' | i4ctl decode
  i4ctl encode --frame < packet.json | i4ctl decode --frame --hex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}

			var v protocol.Value
			if asFrame {
				if isHex {
					if data, err = hex.DecodeString(strings.TrimSpace(string(data))); err != nil {
						return fmt.Errorf("frame: %w", err)
					}
				}
				p, err := packet.Decode(data)
				if err != nil {
					return err
				}
				v = p.Data()
			} else if v, err = protocol.Parse(string(data)); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(protocol.ToNative(v))
		},
	}
	cmd.Flags().BoolVar(&asFrame, "frame", false, "input is one mudmode frame")
	cmd.Flags().BoolVar(&isHex, "hex", false, "frame input is hex encoded")
	return cmd
}
