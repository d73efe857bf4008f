package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/annel0/session-replay/internal/logging"
	"github.com/annel0/session-replay/internal/playback"
)

var (
	evalTime   float64
	evalObject string
)

var evalCmd = &cobra.Command{
	Use:   "eval <log...> --time <seconds>",
	Short: "Print reconstructed object states at a point in time",
	Long: `Загружает логи в плеер и печатает состояние объектов в момент --time.
Логи с суффиксом .static загружаются как статические наборы. Время вне
диапазона записи прижимается к его границе.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().Float64VarP(&evalTime, "time", "t", 0, "playback time in seconds")
	evalCmd.Flags().StringVarP(&evalObject, "object", "o", "", "only objects with this name or full name")
	_ = evalCmd.MarkFlagRequired("time")
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	p := playback.NewPlayer(playback.WithEventBus(e.bus), playback.WithSpeed(cfg.Playback.Speed))
	for _, name := range args {
		opts := playback.LoadOptions{Static: strings.HasSuffix(name, ".static")}
		if _, err := p.Load(ctx, e.store, name, opts); err != nil {
			return err
		}
	}

	t := clampTime(p, evalTime)
	p.SetCurrentTime(t)
	printStates(cmd.OutOrStdout(), p, evalObject)
	return nil
}

// clampTime вводит t в диапазон плеера
func clampTime(p *playback.Player, t float64) float64 {
	switch {
	case t < p.StartTime():
		logging.Warn("t=%.3f раньше начала записи, используется %.3f", t, p.StartTime())
		return p.StartTime()
	case t > p.EndTime():
		logging.Warn("t=%.3f позже конца записи, используется %.3f", t, p.EndTime())
		return p.EndTime()
	}
	return t
}

func printStates(w io.Writer, p *playback.Player, filter string) {
	fmt.Fprintf(w, "t=%.3f [%.3f, %.3f]\n", p.CurrentTime(), p.StartTime(), p.EndTime())
	for _, set := range p.Sets() {
		fmt.Fprintf(w, "%s (%s)\n", set.Name, set.ID)
		for _, o := range set.Objects() {
			if filter != "" && filter != o.Name && filter != o.FullName() {
				continue
			}
			printState(w, o)
		}
	}
}

func printState(w io.Writer, o *playback.Object) {
	st := o.State()
	if !st.Exists {
		fmt.Fprintf(w, "  %s: not spawned\n", o.FullName())
		return
	}

	fmt.Fprintf(w, "  %s: pos=%s rot=%s scale=%s active=%t\n",
		o.FullName(), st.Position, st.Rotation, st.Scale, st.Active)
	if st.Light != nil {
		fmt.Fprintf(w, "    light %s color=%s intensity=%.3f\n", st.Light.Type, st.Light.Color, st.Light.Intensity)
	}
	if st.Camera != nil {
		fmt.Fprintf(w, "    camera fov=%.2f near=%.2f far=%.2f\n", st.Camera.FOV, st.Camera.Near, st.Camera.Far)
	}
	if st.Renderable != nil {
		fmt.Fprintf(w, "    mesh=%s color=%s materials=%d\n", st.Renderable.Mesh.Path, st.Renderable.Color, len(st.Renderable.Materials))
	}
	if st.Skeleton != nil {
		fmt.Fprintf(w, "    skeleton bones=%d state=%d time=%.3f\n",
			len(st.Skeleton.Rig.Bones), st.Skeleton.Animation.StateHash, st.Skeleton.Animation.NormalizedTime)
	}
}
