package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chazu/freezeout/pkg/config"
	"github.com/chazu/freezeout/pkg/engine"
	"github.com/chazu/freezeout/pkg/field"
	"github.com/chazu/freezeout/pkg/scan"
	"github.com/chazu/freezeout/pkg/stl"
)

func newExtractCmd() *cobra.Command {
	var (
		cfgPath string
		workers int
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the threshold surface described by a run configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			return runExtract(cfgPath, workers)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "run.toml", "run configuration file")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "scan workers (overrides the configuration)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func runExtract(cfgPath string, workers int) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	source, err := os.ReadFile(cfg.Script)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	set, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", cfg.Script, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.WithField("script", cfg.Script).Error(e.Error())
		}
		return fmt.Errorf("%s: %d script error(s)", cfg.Script, len(evalErrs))
	}

	f, err := selectField(set, cfg.Field)
	if err != nil {
		return err
	}

	grid := field.Grid{
		Origin:  cfg.Grid.Origin,
		Spacing: cfg.Grid.Spacing,
		Shape:   cfg.Grid.Shape,
	}
	scanner := scan.New(cfg.Threshold, scan.Options{
		Workers:          cfg.Workers,
		Log:              log,
		CollectTriangles: cfg.Output.STL != "" && grid.Dim() == 3,
	})
	surface, err := scanner.Scan(f, grid)
	if err != nil {
		return err
	}

	if cfg.Output.Surface != "" {
		if err := writeSurface(cfg.Output.Surface, surface); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"path":     cfg.Output.Surface,
			"elements": len(surface.Elements),
		}).Info("surface written")
	}
	if cfg.Output.STL != "" {
		if err := stl.Write(cfg.Output.STL, surface.Triangles); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"path":      cfg.Output.STL,
			"triangles": len(surface.Triangles),
		}).Info("mesh written")
	}
	return nil
}

// selectField picks the named field, or the first defined one when the
// configuration does not name any.
func selectField(set *field.Set, name string) (field.Field, error) {
	if name != "" {
		f, ok := set.Get(name)
		if !ok {
			return nil, fmt.Errorf("script defines no field %q (have %v)", name, set.Names())
		}
		return f, nil
	}
	f, ok := set.Default()
	if !ok {
		return nil, fmt.Errorf("script defines no fields")
	}
	return f, nil
}

// writeSurface writes one row per element: the centroid components
// followed by the normal components.
func writeSurface(path string, s *scan.Surface) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing surface: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, e := range s.Elements {
		for _, c := range e.Centroid {
			fmt.Fprintf(w, "%.9g ", c)
		}
		for k, n := range e.Normal {
			if k > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%.9g", n)
		}
		for _, a := range e.Aux {
			fmt.Fprintf(w, " %.9g", a)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing surface: %w", err)
	}
	return nil
}
