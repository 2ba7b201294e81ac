package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/protoedit/internal/config"
	"github.com/danmuck/protoedit/internal/logging"
	"github.com/danmuck/protoedit/internal/protocol/frame"
)

const (
	formatHex  = "hex"
	formatBin  = "bin"
	formatJSON = "json"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	inFormat   string
	outFormat  string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}
	root := &cobra.Command{
		Use:   "protoedit",
		Short: "inspect and edit protobuf messages without a schema",
		Long: `protoedit decodes protobuf wire bytes without a schema, shows them as JSON
keyed by field number, and edits them in place: point edits, text rewrites
across nested messages and JSON patches.

Input is read from the file argument, or stdin when it is omitted or "-".
A packet starting with a zero byte carries a 4-byte prefix that is kept
and written back unchanged.
`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a protoedit TOML config")
	flags.StringVar(&a.inFormat, "in", formatHex, "input format: hex or bin")
	flags.StringVar(&a.outFormat, "out", formatHex, "output format for edited packets: hex, bin or json")

	root.AddCommand(
		newDecodeCmd(a),
		newEncodeCmd(a),
		newDumpCmd(a),
		newGetCmd(a),
		newSetCmd(a),
		newRmCmd(a),
		newReplaceCmd(a),
		newPatchCmd(a),
		newInterceptCmd(a),
		newConfigCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	logging.ConfigureWith(a.cfg.Log.Logging())

	a.inFormat = strings.ToLower(strings.TrimSpace(a.inFormat))
	a.outFormat = strings.ToLower(strings.TrimSpace(a.outFormat))
	switch a.inFormat {
	case formatHex, formatBin:
	default:
		return fmt.Errorf("unknown input format %q", a.inFormat)
	}
	switch a.outFormat {
	case formatHex, formatBin, formatJSON:
	default:
		return fmt.Errorf("unknown output format %q", a.outFormat)
	}
	logging.Debugf("protoedit.setup cmd=%q config=%q in=%s out=%s", cmd.Name(), a.configPath, a.inFormat, a.outFormat)
	return nil
}

func (a *app) limits() frame.Limits {
	return frame.Limits{MaxPacketBytes: a.cfg.Limits.MaxPacketBytes}
}
