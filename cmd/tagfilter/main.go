package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("tagfilter command failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	a := &app{getenv: os.Getenv, environ: os.Environ}
	root := &cobra.Command{
		Use:           "tagfilter",
		Short:         "Strip or inspect user-defined tagged regions in chat text",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "settings file (default: $TAGFILTER_CONFIG, then .tagfilter.* upwards, XDG, HOME)")
	root.PersistentFlags().StringVar(&a.color, "color", "", "colour output: auto|always|never")

	root.AddCommand(newStripCmd(a))
	root.AddCommand(newAnalyzeCmd(a))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newTagsCmd(a))
	root.AddCommand(newPromptCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}
