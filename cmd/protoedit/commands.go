package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	cjson "github.com/cybergodev/json"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/danmuck/protoedit/internal/config"
	"github.com/danmuck/protoedit/internal/intercept"
	"github.com/danmuck/protoedit/internal/jsonvalue"
	"github.com/danmuck/protoedit/internal/logging"
	"github.com/danmuck/protoedit/internal/observability"
	"github.com/danmuck/protoedit/internal/protocol"
)

var errNoMatch = errors.New("no such field occurrence")

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "print a packet as JSON keyed by field number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.readMessage(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			return a.writeJSON(cmd, m.ToJSON())
		},
	}
}

func newEncodeCmd(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "build a packet from its JSON form",
		Long: `Encode reads a JSON object keyed by field number and writes wire bytes.
Numbers become varints, strings become text unless they start with "hex->",
objects become nested messages and arrays become repeated fields.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readRaw(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			obj, err := jsonvalue.ParseObject(src)
			if err != nil {
				return err
			}
			m := protocol.FromJSON(obj)
			if prefix != "" {
				p, err := protocol.ParseHex(prefix)
				if err != nil {
					return fmt.Errorf("--prefix: %w", err)
				}
				if err := m.SetPrefix(p); err != nil {
					return err
				}
			}
			b, err := m.EncodePacket()
			if err != nil {
				return err
			}
			return a.writeBytes(cmd, b)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "4-byte packet prefix in hex")
	return cmd
}

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [file]",
		Short: "print an indented field listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.readMessage(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			if p := m.Prefix(); len(p) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "# prefix %s\n", protocol.EncodeHex(p))
			}
			return m.Dump(cmd.OutOrStdout())
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <pointer> [file]",
		Short: "print the JSON value at a JSON Pointer such as /5/4",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pointer := args[0]
			if !strings.HasPrefix(pointer, "/") {
				pointer = "/" + strings.ReplaceAll(pointer, ".", "/")
			}
			m, err := a.readMessage(cmd, optionalArg(args, 1))
			if err != nil {
				return err
			}
			doc := m.ToJSON()
			// cybergodev resolves the path; the value is re-read from the
			// ordered tree so nested keys keep wire order.
			if _, err := cjson.Get(string(jsonvalue.Marshal(doc)), pointer); err != nil {
				return fmt.Errorf("get %s: %w", pointer, err)
			}
			out, err := jsonvalue.Lookup(doc, pointer)
			if err != nil {
				return fmt.Errorf("get %s: %w", pointer, err)
			}
			return a.writeJSON(cmd, out)
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	var kind string
	var occurrence int
	cmd := &cobra.Command{
		Use:   "set <field> <value> [file]",
		Short: "overwrite one field occurrence",
		Long: `Set overwrites one existing field occurrence. --type picks how value is
read: varint, fixed32 and fixed64 take an integer; text takes a string;
hex and message take hex digits, message switching the field to the nested
view when the bytes round-trip as a message.
`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseFieldArg(args[0])
			if err != nil {
				return err
			}
			m, err := a.readMessage(cmd, optionalArg(args, 2))
			if err != nil {
				return err
			}
			ok, err := setField(m, num, occurrence, kind, args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("set %d[%d] as %s: %w", num, occurrence, kind, errNoMatch)
			}
			a.reportChanges(cmd, 1)
			return a.writeMessage(cmd, m)
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "text", "value type: varint, fixed32, fixed64, text, hex or message")
	cmd.Flags().IntVarP(&occurrence, "occurrence", "n", 0, "0-based occurrence among fields with this number")
	return cmd
}

func setField(m *protocol.Message, num protowire.Number, occurrence int, kind, value string) (bool, error) {
	switch kind {
	case "varint", "fixed64":
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return false, err
		}
		if kind == "varint" {
			return m.SetVarint(num, occurrence, v), nil
		}
		return m.SetFixed64(num, occurrence, v), nil
	case "fixed32":
		v, err := strconv.ParseInt(value, 0, 32)
		if err != nil {
			return false, err
		}
		return m.SetFixed32(num, occurrence, int32(v)), nil
	case "text":
		return m.SetText(num, occurrence, value), nil
	case "hex":
		return m.SetHex(num, occurrence, value), nil
	case "message":
		b, err := protocol.ParseHex(value)
		if err != nil {
			return false, err
		}
		return m.SetMessageBytes(num, occurrence, b), nil
	default:
		return false, fmt.Errorf("unknown value type %q", kind)
	}
}

func newRmCmd(a *app) *cobra.Command {
	var occurrence int
	var all bool
	cmd := &cobra.Command{
		Use:   "rm <field> [file]",
		Short: "remove one field occurrence, or every occurrence with --all",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseFieldArg(args[0])
			if err != nil {
				return err
			}
			m, err := a.readMessage(cmd, optionalArg(args, 1))
			if err != nil {
				return err
			}
			n := 0
			if all {
				n = m.RemoveAll(num)
			} else if m.Remove(num, occurrence) {
				n = 1
			}
			if n == 0 {
				return fmt.Errorf("rm %d: %w", num, errNoMatch)
			}
			a.reportChanges(cmd, n)
			return a.writeMessage(cmd, m)
		},
	}
	cmd.Flags().IntVarP(&occurrence, "occurrence", "n", 0, "0-based occurrence among fields with this number")
	cmd.Flags().BoolVar(&all, "all", false, "remove every occurrence")
	return cmd
}

func newReplaceCmd(a *app) *cobra.Command {
	var useRegex bool
	cmd := &cobra.Command{
		Use:   "replace <find> <replacement> [file]",
		Short: "rewrite text in every text field, nested messages included",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.readMessage(cmd, optionalArg(args, 2))
			if err != nil {
				return err
			}
			var n int
			if useRegex {
				re, err := regexp.Compile(args[0])
				if err != nil {
					return err
				}
				n = m.ReplaceRegex(re, args[1])
			} else {
				n = m.ReplaceLiteral(args[0], args[1])
			}
			a.reportChanges(cmd, n)
			return a.writeMessage(cmd, m)
		},
	}
	cmd.Flags().BoolVarP(&useRegex, "regex", "e", false, "treat find as a regular expression; replacement may use $1")
	return cmd
}

func newPatchCmd(a *app) *cobra.Command {
	var deleteMissing bool
	cmd := &cobra.Command{
		Use:   "patch <json|@file> [file]",
		Short: "apply a JSON view to the packet",
		Long: `Patch applies a JSON object in the decode output shape. Scalars hit the first
occurrence of a field, arrays pair with existing occurrences in order and
objects recurse into nested messages. With --delete-missing, fields absent
from the patch and fields set to null are removed.
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := []byte(args[0])
			if path, ok := strings.CutPrefix(args[0], "@"); ok {
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				src = b
			}
			patch, err := jsonvalue.ParseObject(src)
			if err != nil {
				return err
			}
			m, err := a.readMessage(cmd, optionalArg(args, 1))
			if err != nil {
				return err
			}
			a.reportChanges(cmd, m.ApplyView(patch, deleteMissing))
			return a.writeMessage(cmd, m)
		},
	}
	cmd.Flags().BoolVar(&deleteMissing, "delete-missing", false, "remove fields the patch does not name")
	return cmd
}

func newInterceptCmd(a *app) *cobra.Command {
	var uri, direction string
	var cmdID int
	var metrics bool
	cmd := &cobra.Command{
		Use:   "intercept [file]",
		Short: "run the configured rules over one packet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := intercept.Direction(strings.ToLower(direction))
			if dir != intercept.Request && dir != intercept.Response {
				return fmt.Errorf("unknown direction %q", direction)
			}
			ri, err := intercept.NewRuleInterceptor("config", a.cfg.Rules, a.limits())
			if err != nil {
				return err
			}
			intercept.Register(ri)
			defer intercept.Unregister(ri.Name())

			b, err := a.readPacket(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			chain := intercept.Registered()
			logging.Debugf("protoedit.intercept chain=%d dir=%s uri=%q cmd=%d", len(chain), dir, uri, cmdID)
			out, changed := intercept.Handle(chain, dir, uri, cmdID, b)
			fmt.Fprintf(cmd.ErrOrStderr(), "modified=%t\n", changed)
			if metrics {
				if err := observability.WriteText(cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			if a.outFormat == formatJSON {
				m, err := protocol.Decode(out)
				if err != nil {
					return err
				}
				return a.writeJSON(cmd, m.ToJSON())
			}
			return a.writeBytes(cmd, out)
		},
	}
	cmd.Flags().StringVar(&uri, "uri", "", "request uri the packet belongs to")
	cmd.Flags().IntVar(&cmdID, "cmd", 0, "command id the packet belongs to")
	cmd.Flags().StringVar(&direction, "direction", string(intercept.Request), "request or response")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "write interception metrics to stderr in prometheus text format")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "manage the protoedit config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := optionalArg(args, 0)
			if path == "" {
				path = "protoedit.toml"
			}
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "check a config file without running anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d rule(s)\n", len(cfg.Rules))
			return nil
		},
	}
	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

func parseFieldArg(s string) (protowire.Number, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("field number %q: %w", s, err)
	}
	num := protowire.Number(n)
	if !num.IsValid() {
		return 0, fmt.Errorf("field number %d out of range", n)
	}
	return num, nil
}
