package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phyten/tagfilter/internal/engine"
	"github.com/phyten/tagfilter/internal/engine/opts"
	"github.com/phyten/tagfilter/internal/model"
	"github.com/phyten/tagfilter/internal/output"
	"github.com/phyten/tagfilter/internal/prompt"
)

var errInvalidTag = errors.New("tag is invalid")

func newStripCmd(a *app) *cobra.Command {
	var asPrompt bool
	cmd := &cobra.Command{
		Use:   "strip [file|-]",
		Short: "Remove every enabled tag's regions and print the result",
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
			eng := a.engine(cmd)
			var out string
			if asPrompt {
				out = prompt.Processor{Engine: eng}.Process(text, snap.Settings).Processed
			} else {
				out = eng.Strip(text, snap.Settings.Tags)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&asPrompt, "prompt", false, "treat input as a prompt: honour enabled and excluded paragraphs")
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		outputFlag string
		fields     string
		highlight  bool
		truncate   int
	)
	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "List every tagged region without modifying the text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			warnProblems(cmd, snap.Settings)

			o := opts.Defaults()
			o.Mode = engine.ModeAnalyze
			snap.UI.ApplyToOptions(&o)
			if cmd.Flags().Changed("output") {
				o.Output = outputFlag
			}
			if cmd.Flags().Changed("highlight") {
				o.Highlight = highlight
			}
			if cmd.Flags().Changed("truncate") {
				o.Truncate = truncate
			}
			if err := opts.NormalizeAndValidate(&o); err != nil {
				return err
			}
			sel, err := output.ResolveFields(fields)
			if err != nil {
				return err
			}

			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			res, err := a.engine(cmd).Apply(text, snap.Settings.Tags, o.Mode)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			painter, err := a.painter(w, snap.UI.Color)
			if err != nil {
				return err
			}
			if o.Highlight {
				return output.WriteHighlighted(w, text, *res.Analysis, painter)
			}
			return output.Write(w, o.Output, *res.Analysis, sel, output.TableOptions{Truncate: o.Truncate, Painter: painter})
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "table", "output format: table|tsv|csv|json|ndjson|markdown")
	cmd.Flags().StringVar(&fields, "fields", "", "comma separated columns (tag,tag_id,index,offset,line,col,location,length,content,match)")
	cmd.Flags().BoolVar(&highlight, "highlight", false, "print the text with matches marked instead of a table")
	cmd.Flags().IntVar(&truncate, "truncate", 0, "truncate content and match cells to N columns (0 = no limit)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var tag model.Tag
	var disabled bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether a tag definition can be saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tag.Enabled = !disabled
			res := engine.Validate(tag)
			w := cmd.OutOrStdout()
			if !res.IsValid {
				_, _ = fmt.Fprintf(w, "invalid: %s\n", res.Message)
				return errInvalidTag
			}
			desc := engine.Describe(tag)
			_, err := fmt.Fprintf(w, "ok: %s\n", desc.Text)
			return err
		},
	}
	cmd.Flags().StringVar(&tag.Name, "name", "", "tag name")
	cmd.Flags().StringVar(&tag.OpenTag, "open", "", "opening delimiter")
	cmd.Flags().StringVar(&tag.CloseTag, "close", "", "closing delimiter")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "describe the tag as disabled")
	return cmd
}
