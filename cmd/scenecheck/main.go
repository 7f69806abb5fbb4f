// Command scenecheck validates scene and prefab YAML without opening a
// window. With no arguments it checks the scenes the game ships with.
package main

import (
	"fmt"
	"log"

	"github.com/milk9111/redroom/ecs/entity"
	"github.com/milk9111/redroom/prefabs"
	"github.com/spf13/cobra"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:          "scenecheck [scene.yaml...]",
		Short:        "Validate red room scene and prefab YAML",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefabs.SetDiskDir(dir)
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
	cmd.Flags().StringVarP(&dir, "dir", "d", "prefabs", "prefab override directory, empty for embedded only")
	return cmd
}
