// FILE: lixenwraith/config/cmd/hocon/commands.go
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lixenwraith/config"
	"github.com/lixenwraith/config/hocon"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose        bool
	strictIncludes bool
	overrides      []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "hocon",
		Short:         "Inspect, format and convert HOCON configuration files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fs := cmd.PersistentFlags()
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log include resolution to stderr")
	fs.BoolVar(&opts.strictIncludes, "strict-includes", false, "fail on includes that do not resolve")
	fs.StringArrayVar(&opts.overrides, "set", nil, "override a value, path=value (repeatable)")

	cmd.AddCommand(
		newFmtCmd(opts),
		newGetCmd(opts),
		newConvertCmd(opts),
		newCheckCmd(opts),
	)
	return cmd
}

// load reads file with every include and applies the --set overrides.
func (o *rootOptions) load(cmd *cobra.Command, file string) (*config.Config, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	loadOpts := config.DefaultLoadOptions()
	loadOpts.StrictIncludes = o.strictIncludes

	cfg := config.NewWithOptions(loadOpts)
	cfg.SetLogger(logger)

	if len(o.overrides) > 0 {
		args := make([]string, 0, len(o.overrides))
		for _, s := range o.overrides {
			if !strings.Contains(s, "=") {
				return nil, fmt.Errorf("invalid --set %q, expected path=value", s)
			}
			args = append(args, "--"+s)
		}
		if err := cfg.LoadCLI(args); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFile(file); err != nil {
		return nil, err
	}
	logger.Debug("config loaded", "file", file, "files", len(cfg.Files()))
	return cfg, nil
}

type fmtOptions struct {
	write  bool
	header string
}

func newFmtCmd(root *rootOptions) *cobra.Command {
	opts := fmtOptions{}
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Print the file in canonical form, includes and substitutions resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd, args[0])
			if err != nil {
				return err
			}
			if opts.write {
				return cfg.SaveWithHeader(args[0], opts.header)
			}
			return hocon.Write(cmd.OutOrStdout(), cfg.Entries(), opts.header)
		},
	}
	fs := cmd.Flags()
	fs.BoolVarP(&opts.write, "write", "w", false, "write the result back to the file")
	fs.StringVar(&opts.header, "header", "", "comment header placed above the configuration")
	return cmd
}

func newGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the value at a path, or the object below it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd, args[0])
			if err != nil {
				return err
			}
			return printPath(cmd.OutOrStdout(), cfg, args[1])
		},
	}
}

// printPath writes a value on one line, or an object as a document relative
// to path.
func printPath(w io.Writer, cfg *config.Config, path string) error {
	value, ok := cfg.Get(path)
	if !ok {
		return fmt.Errorf("%w: %s", config.ErrPathNotFound, path)
	}
	if !hocon.IsNode(value) {
		_, err := fmt.Fprintln(w, hocon.FormatValue(value))
		return err
	}

	scope := make(map[string]any)
	for _, p := range cfg.Paths(path) {
		if p == path {
			continue
		}
		v, _ := cfg.Get(p)
		scope[strings.TrimPrefix(p, path+".")] = v
	}
	return hocon.Write(w, hocon.EntriesFromMap(scope), "")
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert the file to json, yaml, toml or hocon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := config.ParseFormat(to)
			if err != nil {
				return err
			}
			cfg, err := root.load(cmd, args[0])
			if err != nil {
				return err
			}
			return cfg.Export(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVar(&to, "to", "json", "output format: json, yaml, toml or hocon")
	return cmd
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate the file and everything it includes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd, args[0])
			if err != nil {
				var syntaxErr *hocon.SyntaxError
				if errors.As(err, &syntaxErr) {
					return fmt.Errorf("%s: %w", args[0], syntaxErr)
				}
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d paths, %d files\n", len(cfg.Paths("")), len(cfg.Files()))
			return err
		},
	}
}
