package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-multihost/framework/app"
	"github.com/km-arc/go-multihost/framework/container"
	gohttp "github.com/km-arc/go-multihost/framework/http"
	"github.com/km-arc/go-multihost/framework/hosting"
	"github.com/km-arc/go-multihost/framework/routing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the multihost server with the demo hosts",
	Long: `Start an HTTP server hosting two demo sub-applications:

  admin at /mcp/admin   (requires an Authorization header)
  user  at /mcp/user

Enable discovery to list hosts at /mcp/_hosts.`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides APP_PORT)")
	serveCmd.Flags().Bool("discovery", false, "Enable the host discovery endpoint")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) {
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		os.Setenv("APP_PORT", port)
	}
	if discovery, _ := cmd.Flags().GetBool("discovery"); discovery {
		os.Setenv("HOSTING_DISCOVERY_ENABLED", "true")
	}

	var opts []app.Option
	if files, _ := cmd.Flags().GetStringSlice("env-file"); len(files) > 0 {
		opts = append(opts, app.WithEnvFiles(files...))
	}
	if settings, _ := cmd.Flags().GetString("settings"); settings != "" {
		opts = append(opts, app.WithSettingsFile(settings))
	}

	application := app.New(opts...)

	if err := addDemoHosts(application); err != nil {
		fmt.Fprintf(os.Stderr, "configuring hosts: %v\n", err)
		os.Exit(1)
	}
	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// addDemoHosts wires the two demo sub-applications. Each host registers a
// host-local store invisible to its sibling and builds its handler set from
// its own scope; the logger arrives through the standard bridge.
func addDemoHosts(application *app.Application) error {
	if err := application.AddHost("admin", func(hb *hosting.HostBuilder) {
		hb.WithRoutePrefix("/mcp/admin").
			WithServices(func(b *container.Builder) {
				b.Singleton("admin.store", func(s *container.Scope) any {
					return newNoteStore("admin")
				})
			}).
			WithProtocol(func(pb *hosting.ProtocolBuilder) {
				pb.UseHandler(newNotesHandler("admin.store"))
			}).
			WithMountConventions(func(mh *hosting.MountHandle) {
				mh.RequireAuthorization(func(r *http.Request) bool {
					return r.Header.Get("Authorization") != ""
				})
			})
	}); err != nil {
		return err
	}

	return application.AddHost("user", func(hb *hosting.HostBuilder) {
		hb.WithRoutePrefix("/mcp/user").
			WithServices(func(b *container.Builder) {
				b.Singleton("user.store", func(s *container.Scope) any {
					return newNoteStore("user")
				})
			}).
			WithProtocol(func(pb *hosting.ProtocolBuilder) {
				pb.UseHandler(newNotesHandler("user.store"))
			})
	})
}

// newNotesHandler builds a host's handler set from its own scope. The store
// key differs per host; resolving the other host's key would find nothing.
func newNotesHandler(storeKey string) func(s *container.Scope) http.Handler {
	return func(s *container.Scope) http.Handler {
		store := container.Resolve[*noteStore](s, storeKey)
		logger, hasLogger := container.Lookup[zerolog.Logger](s, hosting.KeyLogger)

		r := routing.New()
		r.Get("/notes", func(w http.ResponseWriter, req *http.Request) {
			gohttp.NewResponse(w).Success(store.All())
		})
		r.Post("/notes", func(w http.ResponseWriter, req *http.Request) {
			note := req.URL.Query().Get("text")
			if note == "" {
				gohttp.NewResponse(w).Error(http.StatusBadRequest, "text query parameter required")
				return
			}
			store.Add(note)
			if hasLogger {
				logger.Info().Str("owner", store.owner).Str("note", note).Msg("note added")
			}
			gohttp.NewResponse(w).Created(map[string]any{"text": note})
		})
		return r
	}
}
