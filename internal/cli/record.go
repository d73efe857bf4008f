package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/annel0/session-replay/internal/demo"
	"github.com/annel0/session-replay/internal/recorder"
)

var (
	recordName     string
	recordDuration float64
	recordFPS      int
	recordSeed     int64
	recordMovers   int
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the demo scene into static and dynamic logs",
	Long: `Записывает синтетическую сцену (шум Перлина) с настройками секции recording
и сохраняет два лога: <name>.static и <name>.dynamic.`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordName, "name", "n", "session", "base log name")
	recordCmd.Flags().Float64VarP(&recordDuration, "duration", "d", 10, "recording length in seconds")
	recordCmd.Flags().IntVar(&recordFPS, "fps", 30, "simulated frame rate")
	recordCmd.Flags().Int64Var(&recordSeed, "seed", 1, "noise seed")
	recordCmd.Flags().IntVar(&recordMovers, "movers", 4, "number of moving crates")
}

// logNames имена статического и динамического логов сессии
func logNames(base string) (static, dynamic string) {
	return base + ".static", base + ".dynamic"
}

func runRecord(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if recordDuration <= 0 {
		return fmt.Errorf("--duration должен быть > 0")
	}

	settings, err := recorder.SettingsFromConfig(cfg.Recording)
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	sess := recorder.NewSession(settings, recorder.WithStore(e.store), recorder.WithEventBus(e.bus))
	opts := demo.DefaultOptions()
	opts.Seed = recordSeed
	opts.Movers = recordMovers
	demo.Record(sess, demo.NewScene(opts), recordDuration, recordFPS)

	staticName, dynamicName := logNames(recordName)
	if !sess.SaveStaticData(ctx, staticName) {
		return fmt.Errorf("не удалось сохранить %s", staticName)
	}
	if !sess.SaveDynamicData(ctx, dynamicName) {
		return fmt.Errorf("не удалось сохранить %s", dynamicName)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recorded %.2fs (%s): %d static, %d dynamic objects\n",
		sess.CurrentTime(), settings.Policy, len(sess.StaticObjects()), len(sess.DynamicObjects()))
	fmt.Fprintf(out, "  %s\n  %s\n", staticName, dynamicName)
	return nil
}
