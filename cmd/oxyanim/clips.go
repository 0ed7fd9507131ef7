package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newClipsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clips <file>",
		Short: "List the skeleton and animation clips of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, m, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			defer l.Close()

			out := cmd.OutOrStdout()
			skel := m.Skeleton()
			fmt.Fprintf(out, "model %s: %d nodes, %d bones\n", m.Name(), skel.NodeCount(), skel.BoneCount())

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLIP\tTICKS\tTPS\tSECONDS\tCHANNELS\tUNBOUND")
			for i := range m.AnimationCount() {
				clip, binding := m.Animation(i)
				fmt.Fprintf(w, "%s\t%g\t%g\t%.3f\t%d\t%d\n",
					clip.Name, clip.DurationTicks, clip.TicksPerSecond, clip.DurationSeconds(),
					len(clip.Channels), len(binding.Unbound()))
			}
			return w.Flush()
		},
	}
}
