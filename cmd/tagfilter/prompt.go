package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phyten/tagfilter/internal/engine/opts"
	"github.com/phyten/tagfilter/internal/prompt"
	"github.com/phyten/tagfilter/internal/textutil"
)

func newPromptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Filter assembled prompts paragraph by paragraph",
	}
	cmd.AddCommand(newPromptProcessCmd(a))
	cmd.AddCommand(newPromptSegmentsCmd(a))
	cmd.AddCommand(newPromptExclusionCmd(a, "exclude", true))
	cmd.AddCommand(newPromptExclusionCmd(a, "include", false))
	cmd.AddCommand(newPromptSwapCmd())
	cmd.AddCommand(newPromptReplaceCmd())
	return cmd
}

func newPromptProcessCmd(a *app) *cobra.Command {
	var showContext bool
	cmd := &cobra.Command{
		Use:   "process [file|-]",
		Short: "Strip tags from every paragraph that is not excluded",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			warnProblems(cmd, snap.Settings)
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			res := prompt.Processor{Engine: a.engine(cmd)}.Process(text, snap.Settings)
			w := cmd.OutOrStdout()
			if !showContext {
				_, err = io.WriteString(w, res.Processed)
				return err
			}
			painter, err := a.painter(w, snap.UI.Color)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w, painter.Header("--- original ---"))
			_, _ = fmt.Fprintln(w, res.Original)
			_, _ = fmt.Fprintln(w, painter.Header("--- filtered ---"))
			_, err = fmt.Fprintln(w, res.Processed)
			return err
		},
	}
	cmd.Flags().BoolVar(&showContext, "context", false, "print the original prompt above the filtered one")
	return cmd
}

func newPromptSegmentsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "segments [file|-]",
		Short: "List the paragraphs of a prompt with their exclusion state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			segs := prompt.Segments(text, snap.Settings)
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(segs)
			}
			painter, err := a.painter(w, snap.UI.Color)
			if err != nil {
				return err
			}
			for _, s := range segs {
				state := "filter "
				if s.Excluded {
					state = "exclude"
				}
				line := fmt.Sprintf("%3d  %s  %s", s.Index, state, textutil.OneLine(s.Preview))
				if s.Excluded {
					line = painter.Disabled(line)
				}
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print segments as JSON")
	return cmd
}

func newPromptExclusionCmd(a *app, use string, exclude bool) *cobra.Command {
	short := "Exclude paragraphs from filtering"
	if !exclude {
		short = "Filter previously excluded paragraphs again"
	}
	return &cobra.Command{
		Use:   use + " <index>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := opts.ParseIndexList(args, "index")
			if err != nil {
				return err
			}
			path, settings, err := a.fileSettings()
			if err != nil {
				return err
			}
			for _, i := range indices {
				if exclude {
					settings = settings.Exclude(i)
				} else {
					settings = settings.Include(i)
				}
			}
			return a.save(cmd, path, settings)
		},
	}
}

func newPromptSwapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <i> <j> [file|-]",
		Short: "Exchange two paragraphs and print the prompt",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index: %q", args[0])
			}
			j, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index: %q", args[1])
			}
			text, err := readText(cmd, args[2:])
			if err != nil {
				return err
			}
			out, err := prompt.Swap(text, i, j)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newPromptReplaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replace <i> <text> [file|-]",
		Short: "Replace one paragraph and print the prompt",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index: %q", args[0])
			}
			text, err := readText(cmd, args[2:])
			if err != nil {
				return err
			}
			out, err := prompt.Replace(text, i, args[1])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}
