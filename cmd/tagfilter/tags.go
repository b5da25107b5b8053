package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/tagfilter/internal/config"
	"github.com/phyten/tagfilter/internal/engine"
	"github.com/phyten/tagfilter/internal/model"
	"github.com/phyten/tagfilter/internal/store"
	"github.com/phyten/tagfilter/internal/termcolor"
	"github.com/phyten/tagfilter/internal/textutil"
)

const shortIDLen = 8

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the tag collection in the settings file",
	}
	cmd.AddCommand(newTagsListCmd(a))
	cmd.AddCommand(newTagsShowCmd(a))
	cmd.AddCommand(newTagsAddCmd(a))
	cmd.AddCommand(newTagsEditCmd(a))
	cmd.AddCommand(newTagsRemoveCmd(a))
	cmd.AddCommand(newTagsToggleCmd(a, "enable", true))
	cmd.AddCommand(newTagsToggleCmd(a, "disable", false))
	cmd.AddCommand(newTagsMoveCmd(a))
	cmd.AddCommand(newTagsExportCmd(a))
	cmd.AddCommand(newTagsImportCmd(a))
	return cmd
}

// editTags loads the settings file, runs fn against a store seeded with its
// tags and writes the result back.
func (a *app) editTags(cmd *cobra.Command, fn func(st *store.Store) error) error {
	path, settings, err := a.fileSettings()
	if err != nil {
		return err
	}
	st := store.New(settings.Tags)
	if err := fn(st); err != nil {
		return err
	}
	settings.Tags = st.List()
	return a.save(cmd, path, settings)
}

// resolveTagRef accepts a full id, a unique id prefix, a unique name
// (case-insensitive) or a #N position.
func resolveTagRef(tags []model.Tag, ref string) (model.Tag, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Tag{}, errors.New("empty tag reference")
	}
	if strings.HasPrefix(ref, "#") {
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n < 0 || n >= len(tags) {
			return model.Tag{}, fmt.Errorf("%w: %s", store.ErrNotFound, ref)
		}
		return tags[n], nil
	}
	for _, t := range tags {
		if t.ID == ref {
			return t, nil
		}
	}
	var hits []model.Tag
	for _, t := range tags {
		if strings.HasPrefix(t.ID, ref) {
			hits = append(hits, t)
		}
	}
	if len(hits) == 0 {
		for _, t := range tags {
			if strings.EqualFold(t.Name, ref) {
				hits = append(hits, t)
			}
		}
	}
	switch len(hits) {
	case 0:
		return model.Tag{}, fmt.Errorf("%w: %s", store.ErrNotFound, ref)
	case 1:
		return hits[0], nil
	default:
		return model.Tag{}, fmt.Errorf("ambiguous tag reference %q matches %d tags", ref, len(hits))
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func newTagsListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags in application order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				return store.New(snap.Settings.Tags).Export(w)
			}
			painter, err := a.painter(w, snap.UI.Color)
			if err != nil {
				return err
			}
			return writeTagTable(w, snap.Settings, painter)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tags as a JSON array")
	return cmd
}

func writeTagTable(w io.Writer, settings config.Settings, p termcolor.Painter) error {
	if len(settings.Tags) == 0 {
		_, err := fmt.Fprintln(w, "no tags configured")
		return err
	}
	problems := make(map[int]string)
	for _, pr := range settings.Problems() {
		problems[pr.Index] = pr.Message
	}
	headers := []string{"#", "ID", "NAME", "OPEN", "CLOSE", "STATE"}
	rows := make([][]string, 0, len(settings.Tags))
	for i, t := range settings.Tags {
		state := "enabled"
		if !t.Enabled {
			state = "disabled"
		}
		if msg, ok := problems[i]; ok {
			state = "invalid: " + msg
		}
		rows = append(rows, []string{strconv.Itoa(i), shortID(t.ID), textutil.OneLine(t.Name), textutil.OneLine(t.OpenTag), textutil.OneLine(t.CloseTag), state})
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = textutil.VisibleWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if n := textutil.VisibleWidth(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			if i == len(cells)-1 {
				parts[i] = c
				continue
			}
			parts[i] = textutil.PadRight(c, widths[i])
		}
		return strings.Join(parts, "  ")
	}
	if _, err := fmt.Fprintln(w, p.Header(line(headers))); err != nil {
		return err
	}
	for i, r := range rows {
		text := line(r)
		switch {
		case !settings.Tags[i].Enabled:
			text = p.Disabled(text)
		default:
			text = p.Tag(i, text)
		}
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}

func newTagsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <tag>",
		Short: "Show one tag and the pattern built from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			tag, err := resolveTagRef(snap.Settings.Tags, args[0])
			if err != nil {
				return err
			}
			v := engine.Validate(tag)
			d := engine.Describe(tag)
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "id:      %s\n", tag.ID)
			_, _ = fmt.Fprintf(w, "name:    %s\n", tag.Name)
			_, _ = fmt.Fprintf(w, "open:    %s\n", tag.OpenTag)
			_, _ = fmt.Fprintf(w, "close:   %s\n", tag.CloseTag)
			_, _ = fmt.Fprintf(w, "enabled: %t\n", tag.Enabled)
			if !v.IsValid {
				_, err = fmt.Fprintf(w, "invalid: %s\n", v.Message)
				return err
			}
			_, err = fmt.Fprintf(w, "%s:    %s\n", d.Severity, d.Text)
			return err
		},
	}
}

func newTagsAddCmd(a *app) *cobra.Command {
	var name, openTag, closeTag string
	var disabled bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tag at the end of the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var added model.Tag
			err := a.editTags(cmd, func(st *store.Store) error {
				var err error
				added, err = st.Add(name, openTag, closeTag, !disabled)
				return err
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "tag name")
	cmd.Flags().StringVar(&openTag, "open", "", "opening delimiter")
	cmd.Flags().StringVar(&closeTag, "close", "", "closing delimiter")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "add the tag disabled")
	return cmd
}

func newTagsEditCmd(a *app) *cobra.Command {
	var name, openTag, closeTag string
	cmd := &cobra.Command{
		Use:   "edit <tag>",
		Short: "Change a tag's name or delimiters, keeping its id and position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("open") && !flags.Changed("close") {
				return errors.New("nothing to change: pass --name, --open or --close")
			}
			return a.editTags(cmd, func(st *store.Store) error {
				tag, err := resolveTagRef(st.List(), args[0])
				if err != nil {
					return err
				}
				if flags.Changed("name") {
					tag.Name = name
				}
				if flags.Changed("open") {
					tag.OpenTag = openTag
				}
				if flags.Changed("close") {
					tag.CloseTag = closeTag
				}
				_, err = st.Update(tag)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&openTag, "open", "", "new opening delimiter")
	cmd.Flags().StringVar(&closeTag, "close", "", "new closing delimiter")
	return cmd
}

func newTagsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <tag>",
		Aliases: []string{"delete"},
		Short:   "Delete a tag",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed model.Tag
			err := a.editTags(cmd, func(st *store.Store) error {
				tag, err := resolveTagRef(st.List(), args[0])
				if err != nil {
					return err
				}
				removed, err = st.Delete(tag.ID)
				return err
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%s)\n", removed.Name, shortID(removed.ID))
			return err
		},
	}
}

func newTagsToggleCmd(a *app, use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <tag>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.editTags(cmd, func(st *store.Store) error {
				tag, err := resolveTagRef(st.List(), args[0])
				if err != nil {
					return err
				}
				_, err = st.SetEnabled(tag.ID, enabled)
				return err
			})
		},
	}
}

func newTagsMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <tag> <position>",
		Short: "Move a tag to a new position (tags are applied in order)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position: %q", args[1])
			}
			return a.editTags(cmd, func(st *store.Store) error {
				tag, err := resolveTagRef(st.List(), args[0])
				if err != nil {
					return err
				}
				return st.Move(tag.ID, to)
			})
		},
	}
}

func newTagsExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file|-]",
		Short: "Write the tags as a JSON array",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := a.fileSettings()
			if err != nil {
				return err
			}
			st := store.New(settings.Tags)
			if len(args) == 0 || args[0] == "-" {
				return st.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := st.Export(f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
}

func newTagsImportCmd(a *app) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Add tags from a JSON array (or replace the collection with --replace)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var n int
			err := a.editTags(cmd, func(st *store.Store) error {
				var err error
				n, err = st.Import(r, replace)
				return err
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d tag(s)\n", n)
			return err
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the existing tags instead of appending")
	return cmd
}
