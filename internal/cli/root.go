// Package cli provides the basekit command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/basekit/internal/decl"
	"github.com/funvibe/basekit/internal/prettyprinter"
	"github.com/funvibe/basekit/pkg/base"
)

// Version is set at build time.
var Version = "0.1.0"

// app carries per-invocation state from PersistentPreRunE to the commands.
type app struct {
	cfgFile  string
	settings *Settings
	logger   *zap.Logger
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "basekit",
		Short: "basekit - class hierarchy declarations",
		Long: `basekit builds class hierarchies from YAML declaration documents.

It can print the resulting class tree and member layouts, and cast plain
YAML data into instances of a declared class.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			s, err := LoadSettings(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a.settings = s
			a.logger, err = newLogger(s.LogLevel)
			if err != nil {
				return err
			}
			if s.File != "" {
				a.logger.Debug("settings loaded", zap.String("file", s.File))
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "settings file (default: ./basekit.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "", "colored output (auto|always|never)")
	rootCmd.PersistentFlags().StringP("format", "f", "", "member listing format (table|plain)")

	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "always", "never"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "plain"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(a.newInspectCommand())
	rootCmd.AddCommand(a.newCastCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) printer(w io.Writer) *prettyprinter.ClassPrinter {
	format, _ := prettyprinter.ParseFormat(a.settings.Format)
	return prettyprinter.NewClassPrinter(format, useColor(a.settings.Color, w))
}

// build loads and builds the document at path, or the nearest default
// document when path is empty.
func (a *app) build(path string) (*decl.Registry, error) {
	if path == "" {
		found, err := decl.Find(".")
		if err != nil {
			return nil, err
		}
		if found == "" {
			return nil, fmt.Errorf("no declaration document found (looked for classes.yaml)")
		}
		path = found
	}
	doc, err := decl.Load(path)
	if err != nil {
		return nil, err
	}
	rt := base.New(base.WithLogger(a.logger))
	reg, err := doc.Build(rt)
	if err != nil {
		return nil, err
	}
	a.logger.Info("document loaded", zap.String("path", path), zap.Int("classes", len(reg.Names())))
	return reg, nil
}

func (a *app) newInspectCommand() *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "inspect [FILE]",
		Short: "Print the class tree and member layouts of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			reg, err := a.build(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := a.printer(out)

			classes := reg.Classes()
			if only != "" {
				c, ok := reg.Class(only)
				if !ok {
					return fmt.Errorf("unknown class %q", only)
				}
				classes = []*base.Class{c}
			}
			p.PrintTree(classes)
			for _, c := range classes {
				p.PrintMembers(c)
			}
			_, err = io.WriteString(out, p.String())
			return err
		},
	}
	cmd.Flags().StringVarP(&only, "class", "c", "", "only show this class")
	return cmd
}

func (a *app) newCastCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cast FILE CLASS DATA",
		Short: "Cast YAML data into an instance of a declared class",
		Long: `Cast reads DATA (a YAML file, or - for stdin) and casts it into CLASS.

A mapping becomes the instance members, in document order. A sequence
fills an Array-derived class. A string becomes the message of an
Error-derived class.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.build(args[0])
			if err != nil {
				return err
			}
			cls, ok := reg.Class(args[1])
			if !ok {
				return fmt.Errorf("unknown class %q", args[1])
			}
			value, err := readData(args[2], cmd.InOrStdin())
			if err != nil {
				return err
			}
			inst, err := cls.To(value)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := a.printer(out)
			p.PrintInstance(inst)
			_, err = io.WriteString(out, p.String())
			return err
		},
	}
}

// readData decodes a YAML value, keeping mapping order.
func readData(path string, stdin io.Reader) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading data %s: %w", path, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing data %s: %w", path, err)
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var m decl.Members
		if err := root.Decode(&m); err != nil {
			return nil, fmt.Errorf("parsing data %s: %w", path, err)
		}
		return m.Spec(), nil
	}
	var v any
	if err := root.Decode(&v); err != nil {
		return nil, fmt.Errorf("parsing data %s: %w", path, err)
	}
	return v, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "basekit %s\n", Version)
		},
	}
}
