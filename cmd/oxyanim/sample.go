package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/animator"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
)

type sampleOptions struct {
	clip      string
	seconds   float64
	fps       float64
	instances int
}

func newSampleCommand(a *app) *cobra.Command {
	opts := &sampleOptions{}
	cmd := &cobra.Command{
		Use:   "sample <file>",
		Short: "Play a clip for a span of simulated time and print the final bone matrices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.fps <= 0 {
				return fmt.Errorf("--fps must be positive, got %g", opts.fps)
			}
			if opts.instances < 1 {
				return fmt.Errorf("--instances must be at least 1, got %d", opts.instances)
			}

			l, m, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			defer l.Close()

			clip := opts.clip
			if clip == "" && m.AnimationCount() > 0 {
				clip = m.AnimationNames()[0]
			}

			sink := animator.NewStagingSink(m.Skeleton().BoneCount())
			anim, err := a.newAnimator(m, opts.instances, clip, sink)
			if err != nil {
				return err
			}
			defer anim.Release()

			e := engine.NewEngine(engine.WithLogger(a.logger), engine.WithAnimator(0, anim))
			frames := int(opts.seconds * opts.fps)
			for range frames {
				e.Step(1 / opts.fps)
			}
			if frames == 0 {
				e.Step(0)
			}

			return printBones(cmd, m, clip, anim.Player(0), sink.Bones(0))
		},
	}
	cmd.Flags().StringVar(&opts.clip, "clip", "", "clip to play (default: the first clip)")
	cmd.Flags().Float64Var(&opts.seconds, "seconds", 1, "simulated time to play")
	cmd.Flags().Float64Var(&opts.fps, "fps", 30, "update rate of the simulation")
	cmd.Flags().IntVar(&opts.instances, "instances", 1, "number of instances to animate")
	return cmd
}

// newAnimator creates an animator sized from the settings with instances playing clip.
// An empty clip leaves the instances in the rest pose.
func (a *app) newAnimator(m model.Model, instances int, clip string, sinks ...animator.BoneSink) (animator.Animator, error) {
	options := []animator.AnimatorBuilderOption{
		animator.WithModel(m),
		animator.WithLogger(a.logger),
		animator.WithWorkers(a.cfg.Animation.Workers),
		animator.WithMaxInstances(a.cfg.Animation.MaxInstances),
	}
	for _, s := range sinks {
		options = append(options, animator.WithSink(s))
	}
	anim := animator.NewAnimator(options...)

	for range instances {
		index, err := anim.AddInstance()
		if err != nil {
			anim.Release()
			return nil, err
		}
		if clip != "" && !anim.PlayAnimation(index, clip) {
			anim.Release()
			return nil, fmt.Errorf("model %s has no clip %q", m.Name(), clip)
		}
	}
	return anim, nil
}

func printBones(cmd *cobra.Command, m model.Model, clip string, p animator.Player, bones []mgl32.Mat4) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s clip=%q state=%s elapsed=%.3fs tick=%.3f\n",
		m.Name(), clip, p.State(), p.ElapsedSeconds(), p.CurrentTick())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BONE\tTX\tTY\tTZ\tQW\tQX\tQY\tQZ")
	for i, name := range m.Skeleton().BoneNames() {
		t := common.Decompose(bones[i])
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n", name,
			t.Translation.X(), t.Translation.Y(), t.Translation.Z(),
			t.Rotation.W, t.Rotation.V.X(), t.Rotation.V.Y(), t.Rotation.V.Z())
	}
	return w.Flush()
}
