package main

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/redroom/config"
	"github.com/milk9111/redroom/ecs/entity"
	"github.com/milk9111/redroom/game"
	"github.com/milk9111/redroom/prefabs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()
	var baseMonitor bool

	root := &cobra.Command{
		Use:          "redroom",
		Short:        "Physics sandbox: a capsule, a cube and a ball in a red room",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cfg, baseMonitor)
		},
	}
	if err := config.RegisterFlags(v, root.PersistentFlags()); err != nil {
		log.Fatal(err)
	}
	root.Flags().BoolVarP(&baseMonitor, "monitor", "m", false, "use the first monitor instead of the primary one")
	root.AddCommand(newSceneCheckCommand(v))
	return root
}

func run(cfg config.Config, baseMonitor bool) error {
	if baseMonitor {
		if monitors := ebiten.AppendMonitors(nil); len(monitors) > 0 {
			ebiten.SetMonitor(monitors[0])
		}
	}
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	g, err := game.New(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	log.Printf("redroom: mode %s, prefabs %q", cfg.Mode, cfg.PrefabsDir)
	return ebiten.RunGame(g)
}

func newSceneCheckCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "scenecheck [scene.yaml...]",
		Short: "Validate scene and prefab YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefabs.SetDiskDir(v.GetString("prefabs_dir"))
			if len(args) == 0 {
				args = prefabs.DefaultScenes
			}
			if err := entity.CheckScenes(args...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d scene(s) ok\n", len(args))
			return nil
		},
	}
}
