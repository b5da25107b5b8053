package main

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/phyten/tagfilter/internal/config"
	"github.com/phyten/tagfilter/internal/watch"
	"github.com/phyten/tagfilter/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		open    bool
		watchIt bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the test-mode UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			warnProblems(cmd, snap.Settings)
			holder := watch.NewHolder(snap)

			if watchIt {
				if snap.Path == "" {
					logger.Warn("no settings file to watch; serving defaults")
				} else {
					if err := startWatcher(ctx, a, snap, holder, logger); err != nil {
						return err
					}
				}
			}

			srv := web.New(holder, a.engine(cmd), currentVersion())
			return web.ListenAndServe(ctx, addr, srv.Handler(), func(bound net.Addr) {
				url := "http://" + browsableAddr(bound)
				logger.Info("tagfilter serve listening", "url", url, "settings", snap.Path)
				if open {
					browser.Stdout = cmd.ErrOrStderr()
					if err := browser.OpenURL(url); err != nil {
						logger.Warn("open browser failed", "url", url, "err", err)
					}
				}
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&open, "open", false, "open the UI in the default browser")
	cmd.Flags().BoolVar(&watchIt, "watch", false, "reload settings when the settings file changes")
	return cmd
}

func startWatcher(ctx context.Context, a *app, snap config.Snapshot, holder *watch.Holder, logger pslog.Logger) error {
	load := func() (config.Snapshot, error) {
		return config.Resolve(snap.Path, snap.Where, a.getenv)
	}
	w, err := watch.New(snap.Path, load, holder, watch.Options{Log: logger})
	if err != nil {
		return fmt.Errorf("watch %s: %w", snap.Path, err)
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Warn("settings watcher stopped", "err", err)
		}
	}()
	return nil
}

// browsableAddr turns a wildcard listen address into one a browser can open.
func browsableAddr(a net.Addr) string {
	tcp, ok := a.(*net.TCPAddr)
	if !ok {
		return a.String()
	}
	host := tcp.IP.String()
	if tcp.IP == nil || tcp.IP.IsUnspecified() {
		host = "localhost"
	}
	return net.JoinHostPort(host, fmt.Sprint(tcp.Port))
}

