// SPDX-License-Identifier: GPL-2.0-or-later

// Package commandline is the govbsp command line.
package commandline

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"govbsp/config"
	"govbsp/conlog"
	"govbsp/filesystem"
	"govbsp/model"
	"govbsp/vbsp"
)

// versionRange is a "min-max" flag. A single number sets both ends.
type versionRange struct {
	set      bool
	min, max int32
}

func (v *versionRange) Set(s string) error {
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		hi = lo
	}
	min, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 32)
	if err != nil {
		return err
	}
	max, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 32)
	if err != nil {
		return err
	}
	if min > max {
		return errors.Errorf("empty version range %s", s)
	}
	v.set, v.min, v.max = true, int32(min), int32(max)
	return nil
}

func (v *versionRange) String() string {
	return fmt.Sprintf("%d-%d", v.min, v.max)
}

func (v *versionRange) Type() string {
	return "range"
}

// app is the state shared by the commands of one invocation.
type app struct {
	configFile string
	paths      []string
	logLevel   string
	versions   versionRange
	strict     bool

	cfg    *config.Config
	closer io.Closer
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configFile != "" {
		c, err := config.Load(a.configFile)
		if err != nil {
			return err
		}
		cfg = c
	}
	flags := cmd.Flags()
	if flags.Changed("path") {
		cfg.Maps.Paths = a.paths
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if a.versions.set {
		cfg.Maps.MinVersion, cfg.Maps.MaxVersion = a.versions.min, a.versions.max
	}
	if flags.Changed("strict") {
		cfg.Maps.Strict = a.strict
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	closer, err := conlog.Setup(&cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.closer = closer
	conlog.SetOutput(cmd.OutOrStdout())
	if err := filesystem.UseDirs(cfg.Maps.Paths...); err != nil {
		return err
	}
	model.RegisterBSP(cfg.LoadOptions()...)
	a.cfg = cfg
	return nil
}

func (a *app) teardown() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// loadModel reads name from disk, falling back to the search path.
func (a *app) loadModel(name string) (model.Model, error) {
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Load(name)
	}
	if err != nil {
		return nil, err
	}
	return model.Decode(name, data)
}

func (a *app) loadMap(name string) (*vbsp.Map, error) {
	m, err := a.loadModel(name)
	if err != nil {
		return nil, err
	}
	bsp, ok := model.Map(m)
	if !ok {
		return nil, errors.Errorf("%s is not a map", name)
	}
	return bsp, nil
}

// NewRootCommand builds the govbsp command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "govbsp",
		Short:         "govbsp inspects VBSP map files.",
		Long:          `govbsp decodes VBSP map files and answers spatial, visibility and content queries on them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "TOML configuration file")
	pf.StringSliceVar(&a.paths, "path", nil, "map search path, earlier entries win")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.Var(&a.versions, "versions", "accepted format versions, e.g. 19-21")
	pf.BoolVar(&a.strict, "strict", false, "fail on undecodable auxiliary lumps")

	root.AddCommand(
		infoCmd(a),
		listCmd(a),
		lumpsCmd(a),
		locateCmd(a),
		facesCmd(a),
		brushesCmd(a),
		pvsCmd(a),
		pakCmd(a),
		batchCmd(a),
		serveCmd(a),
	)
	return root
}

// Execute runs the command line and reports a failure on stderr.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "govbsp: %v\n", err)
	}
	return err
}
