// Command anvildump is a small CLI over the Anvil reader core: it
// enumerates a world's region files, decodes every present chunk, and
// reports counts per terminal pipeline state. It exists to exercise
// the core end to end, not to render or convert anything.
package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mcanvil/reader/internal/config"
	"github.com/mcanvil/reader/internal/logging"
	"github.com/mcanvil/reader/internal/world"
)

func logrusFields(rx, rz int32) logrus.Fields {
	return logrus.Fields{"rx": rx, "rz": rz}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		worldRoot  string
		workers    int
		logLevel   string
	)

	root := &cobra.Command{
		Use:   "anvildump",
		Short: "Decode Minecraft Anvil world data and report what was found",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&worldRoot, "world", "", "world root directory (overrides config)")
	root.PersistentFlags().IntVar(&workers, "workers", 0, "number of region files to process concurrently (0 = use the config value, default 1)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug|info|warn|error")

	resolve := func() (config.Config, error) {
		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return cfg, err
			}
			cfg = loaded
		}
		if worldRoot != "" {
			cfg.WorldRoot = worldRoot
		}
		if workers > 0 {
			cfg.Workers = workers
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if cfg.WorldRoot == "" {
			return cfg, fmt.Errorf("a world root is required: pass --world or --config")
		}
		return cfg, nil
	}

	root.AddCommand(newWalkCmd(resolve))
	root.AddCommand(newInspectCmd(resolve))
	return root
}

func newWalkCmd(resolve func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "walk",
		Short: "Decode every chunk in every region file under the world root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			return runWalk(cfg)
		},
	}
}

func runWalk(cfg config.Config) error {
	log := logging.New(cfg.LogLevel)
	fs := afero.NewOsFs()

	w, err := world.Open(fs, cfg.WorldRoot, log)
	if err != nil {
		return err
	}

	refs, err := w.Regions()
	if err != nil {
		return err
	}
	bar := progressbar.Default(int64(len(refs)), "regions")

	canc := world.NewCanceler()
	chunks, regions, err := w.WalkParallel(cfg.Workers, canc)
	if err != nil {
		return err
	}

	counts := map[world.State]int{}
	regionErrs := 0

	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range regions {
			if res.Err != nil {
				regionErrs++
				log.WithFields(logrusFields(res.Ref.RX, res.Ref.RZ)).WithError(res.Err).Warn("region-level error")
				continue
			}
			_ = bar.Add(1)
		}
	}()

	for res := range chunks {
		counts[res.State]++
		if res.Err != nil {
			log.WithFields(logrusFields(res.RX, res.RZ)).
				WithField("cx", res.CX).WithField("cz", res.CZ).
				WithError(res.Err).Debug("chunk decode failed")
		}
	}
	<-done

	fmt.Printf("regions: %d ok, %d failed\n", len(refs)-regionErrs, regionErrs)
	for _, s := range []world.State{world.StateProjected, world.StateFrameError, world.StateNBTError, world.StateProjectionError} {
		fmt.Printf("chunks %-16s %d\n", s, counts[s])
	}
	return nil
}

func newInspectCmd(resolve func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the region index header for every region file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			return runInspect(cfg)
		},
	}
}

func runInspect(cfg config.Config) error {
	log := logging.New(cfg.LogLevel)
	fs := afero.NewOsFs()

	w, err := world.Open(fs, cfg.WorldRoot, log)
	if err != nil {
		return err
	}

	refs, err := w.Regions()
	if err != nil {
		return err
	}

	for _, ref := range refs {
		h, err := w.OpenRegion(ref)
		if err != nil {
			fmt.Printf("r.%d.%d: %v\n", ref.RX, ref.RZ, err)
			continue
		}
		present, overlapping := 0, 0
		idx := h.Index()
		for cz := 0; cz < 32; cz++ {
			for cx := 0; cx < 32; cx++ {
				slot := idx.At(cx, cz)
				if slot.Present() {
					present++
					if slot.Overlapping {
						overlapping++
					}
				}
			}
		}
		fmt.Printf("r.%d.%d: %d/1024 chunks present, %d overlapping\n", ref.RX, ref.RZ, present, overlapping)
		h.Close()
	}
	return nil
}
