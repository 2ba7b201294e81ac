package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/protoedit/internal/jsonvalue"
	"github.com/danmuck/protoedit/internal/logging"
	"github.com/danmuck/protoedit/internal/protocol"
	"github.com/danmuck/protoedit/internal/protocol/frame"
)

// readRaw reads the named file, or the command's stdin for "" and "-".
func (a *app) readRaw(cmd *cobra.Command, path string) ([]byte, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	b, err := frame.ReadPacket(r, a.limits())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", displayPath(path), err)
	}
	return b, nil
}

// readPacket reads input in the configured format.
func (a *app) readPacket(cmd *cobra.Command, path string) ([]byte, error) {
	b, err := a.readRaw(cmd, path)
	if err != nil {
		return nil, err
	}
	if a.inFormat == formatHex {
		raw, err := protocol.ParseHex(string(b))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", displayPath(path), err)
		}
		return raw, nil
	}
	return b, nil
}

func (a *app) readMessage(cmd *cobra.Command, path string) (*protocol.Message, error) {
	b, err := a.readPacket(cmd, path)
	if err != nil {
		return nil, err
	}
	m, err := protocol.Decode(b)
	if err != nil {
		return nil, err
	}
	logging.Debugf("protoedit.readMessage path=%q bytes=%d fields=%d prefix=%q",
		displayPath(path), len(b), m.Len(), protocol.EncodeHex(m.Prefix()))
	return m, nil
}

// writeMessage writes an edited message in the configured output format.
func (a *app) writeMessage(cmd *cobra.Command, m *protocol.Message) error {
	if a.outFormat == formatJSON {
		return a.writeJSON(cmd, m.ToJSON())
	}
	b, err := m.EncodePacket()
	if err != nil {
		return err
	}
	return a.writeBytes(cmd, b)
}

func (a *app) writeBytes(cmd *cobra.Command, b []byte) error {
	out := cmd.OutOrStdout()
	if a.outFormat == formatBin {
		_, err := out.Write(b)
		return err
	}
	_, err := fmt.Fprintln(out, protocol.EncodeHex(b))
	return err
}

func (a *app) writeJSON(cmd *cobra.Command, v jsonvalue.Value) error {
	b := jsonvalue.MarshalIndent(v, a.cfg.JSON.Indent)
	_, err := fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func (a *app) reportChanges(cmd *cobra.Command, n int) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%d change(s)\n", n)
}

func displayPath(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
