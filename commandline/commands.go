// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"govbsp/api"
	"govbsp/conlog"
	"govbsp/filesystem"
	"govbsp/math/vec"
	"govbsp/model"
	"govbsp/pack"
	"govbsp/report"
	"govbsp/vbsp"
)

func infoCmd(a *app) *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "info <map>",
		Short: "Print a summary of a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadMap(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				b, err := report.JSON(m)
				if err != nil {
					return err
				}
				conlog.Printf("%s\n", b)
				return nil
			}
			d := m.Directory()
			conlog.Printf("Filename: %s\n", m.Name())
			conlog.Printf(" Version: %d rev %d\n", m.Version, m.Revision)
			conlog.Printf("    Size: %s\n", humanize.Bytes(uint64(d.Size())))
			conlog.Printf("Checksum: %08x\n", m.Checksum())
			conlog.Printf("  Bounds: %v %v\n", m.Mins(), m.Maxs())
			conlog.Printf("  Planes: %s\n", humanize.Comma(int64(len(m.Planes))))
			conlog.Printf("   Faces: %s\n", humanize.Comma(int64(len(m.Faces))))
			conlog.Printf(" Brushes: %s\n", humanize.Comma(int64(len(m.Brushes))))
			conlog.Printf("   Nodes: %s\n", humanize.Comma(int64(m.Tree.NumNodes())))
			conlog.Printf("   Leafs: %s\n", humanize.Comma(int64(m.Tree.NumLeafs())))
			conlog.Printf("  Models: %d\n", len(m.Models))
			conlog.Printf("Clusters: %d\n", m.NumClusters())
			for _, g := range m.GameLumps() {
				conlog.Printf("GameLump: %s v%d %s\n", g.Name(), g.Version, humanize.Bytes(uint64(g.FileLen)))
			}
			for _, n := range m.Materials() {
				conlog.Printf("Material: %s\n", n)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return c
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the maps on the search path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conlog.Printf("search path: %s\n", strings.Join(filesystem.Dirs(), string(os.PathListSeparator)))
			names, err := filesystem.List("maps", ".bsp")
			if err != nil {
				return err
			}
			for _, n := range names {
				fi, err := filesystem.Stat(n)
				if err != nil {
					return err
				}
				conlog.Printf("%-32s %10s\n", filesystem.StripExt(n), humanize.Bytes(uint64(fi.Size())))
			}
			return nil
		},
	}
}

func lumpsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lumps <map>",
		Short: "Print the lump directory of a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := vbsp.Open(data, a.cfg.LoadOptions()...)
			if err != nil {
				return err
			}
			conlog.Printf("Filename: %s\n", args[0])
			conlog.Printf(" Version: %d\n", d.Version())
			for id := vbsp.LumpID(0); id < vbsp.HeaderLumps; id++ {
				e, _ := d.Entry(id)
				if e.Length == 0 {
					continue
				}
				conlog.Printf("  %2d %-32s v%-2d %10s @ %8d ofs\n", int(id), d.Meaning(id), e.Version,
					humanize.Bytes(uint64(e.Length)), e.Offset)
			}
			return nil
		},
	}
}

func parseVec(args []string) (vec.Vec3, error) {
	var p vec.Vec3
	for i := range p {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return p, errors.Wrapf(err, "coordinate %d", i)
		}
		p[i] = float32(f)
	}
	return p, nil
}

func locateCmd(a *app) *cobra.Command {
	var modelIndex int
	c := &cobra.Command{
		Use:   "locate <map> <x> <y> <z>",
		Short: "Find the leaf containing a point",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseVec(args[1:])
			if err != nil {
				return err
			}
			m, err := a.loadMap(args[0])
			if err != nil {
				return err
			}
			ref, err := m.LocateInModel(modelIndex, p)
			if err != nil {
				return err
			}
			leaf, err := m.Tree.Leaf(ref)
			if err != nil {
				return err
			}
			conlog.Printf("leaf %d cluster %d area %d contents %v\n", ref, leaf.Cluster, leaf.Area, leaf.Contents)
			if !leaf.Contains(p) {
				conlog.Printf("point is outside the leaf bounds %v %v\n", leaf.Mins, leaf.Maxs)
			}
			if modelIndex == 0 {
				conlog.Printf("point contents %v\n", m.PointContents(p))
			}
			return nil
		},
	}
	c.Flags().IntVar(&modelIndex, "model", 0, "submodel whose tree is walked")
	return c
}

func leafArgs(a *app, args []string) (*vbsp.Map, vbsp.LeafRef, error) {
	ref, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, 0, errors.Wrap(err, "leaf")
	}
	m, err := a.loadMap(args[0])
	if err != nil {
		return nil, 0, err
	}
	return m, vbsp.LeafRef(ref), nil
}

func facesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "faces <map> <leaf>",
		Short: "List the faces of a leaf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ref, err := leafArgs(a, args)
			if err != nil {
				return err
			}
			faces, err := m.FacesOf(ref)
			if err != nil {
				return err
			}
			for _, f := range faces {
				s := &m.Surfaces[f]
				name, err := m.MaterialName(s.TexInfo)
				if err != nil {
					name = "?"
				}
				kind := "face"
				if s.IsDisplacement() {
					kind = "displacement"
				}
				conlog.Printf("%d %s %s\n", f, kind, name)
			}
			return nil
		},
	}
}

func brushesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "brushes <map> <leaf>",
		Short: "List the brushes of a leaf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ref, err := leafArgs(a, args)
			if err != nil {
				return err
			}
			brushes, err := m.BrushesOf(ref)
			if err != nil {
				return err
			}
			for _, b := range brushes {
				br, err := m.Collision.Brush(b)
				if err != nil {
					return err
				}
				conlog.Printf("%d %v sides %d\n", b, br.Contents, br.NumSides)
			}
			return nil
		},
	}
}

func pvsCmd(a *app) *cobra.Command {
	var audible bool
	c := &cobra.Command{
		Use:   "pvs <map> <cluster>",
		Short: "List the clusters visible from a cluster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Wrap(err, "cluster")
			}
			m, err := a.loadMap(args[0])
			if err != nil {
				return err
			}
			query := m.ClustersVisibleFrom
			if audible {
				query = m.ClustersAudibleFrom
			}
			set, err := query(vbsp.ClusterID(c))
			if err != nil {
				return err
			}
			conlog.Printf("%d of %d clusters: %v\n", set.Len(), m.NumClusters(), set.Clusters())
			return nil
		},
	}
	c.Flags().BoolVar(&audible, "audible", false, "use the audibility table")
	return c
}

func pakCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pak <map> [file]",
		Short: "List the embedded pakfile or print one of its files",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadMap(args[0])
			if err != nil {
				return err
			}
			data := m.Pakfile()
			if len(data) == 0 {
				return errors.Errorf("%s has no pakfile", m.Name())
			}
			p, err := pack.NewReader(m.Name(), data)
			if err != nil {
				return err
			}
			defer p.Close()
			if len(args) == 2 {
				b, err := p.ReadFile(args[1])
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			for _, n := range p.Files() {
				size, _ := p.Size(n)
				conlog.Printf("%10s %s\n", humanize.Bytes(uint64(size)), n)
			}
			return nil
		},
	}
}

func batchCmd(a *app) *cobra.Command {
	var workers int
	c := &cobra.Command{
		Use:   "batch <map>...",
		Short: "Load maps in parallel and print one line per map",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Batch.Workers
			}
			cache := model.NewCache(a.cfg.Cache.MaxEntries,
				model.WithLoadFunc(a.loadModel),
				model.WithCacheLogger(slog.Default()))
			start := time.Now()
			models, err := model.LoadAll(cmd.Context(), cache, args, workers)
			if err != nil {
				return err
			}
			for _, mdl := range models {
				m, ok := model.Map(mdl)
				if !ok {
					continue
				}
				conlog.Printf("%s v%d leafs %d clusters %d checksum %08x\n",
					m.Name(), m.Version, m.Tree.NumLeafs(), m.NumClusters(), m.Checksum())
			}
			slog.Info("batch done", "maps", len(models), "took", humanize.RelTime(start, time.Now(), "", ""))
			return nil
		},
	}
	c.Flags().IntVar(&workers, "workers", 0, "parallel loads, 0 uses the configuration")
	return c
}

func serveCmd(a *app) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve map queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			log := slog.Default()
			cache := model.NewCache(a.cfg.Cache.MaxEntries, model.WithCacheLogger(log))
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(cache, log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", addr)
				errc <- srv.ListenAndServe()
			}()
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address, empty uses the configuration")
	return c
}
