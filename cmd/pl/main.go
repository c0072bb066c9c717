package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"postline/internal/config"
	"postline/internal/db"
	"postline/internal/domain"
	"postline/internal/engine"
	"postline/internal/events"
	"postline/internal/linkedin"
	"postline/internal/migrate"
	"postline/internal/planner"
	"postline/internal/server"
	"postline/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pl",
	Short: "Postline CLI",
	Long: `Postline manages the lifecycle of social posts: draft, score, schedule, publish.
- Workspace: your .postline directory holding the post collection, preferences, and event journal.
- Drafts: posts start as drafts; content and hashtags can only change while drafted.
- Scoring: engagement scores are recomputed on demand, never stored.
- Advisor: hashtag and timing recommendations come from the tables in postline.yml.
- Calendar: 'pl calendar' lays out topics over upcoming days with content types and windows.
- Event log: diary of changes, view with 'pl log tail'.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("POSTLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func registerCommands() {
	rootCmd.AddCommand(draftCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(hashtagsCmd())
	rootCmd.AddCommand(timesCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	st, err := store.Open(workspace)
	if err != nil {
		return err
	}
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	e := engine.New(st, cfg, conn, newLogger())
	return fn(ctx, e)
}

func draftCmd() *cobra.Command {
	var topic, tone, body, bodyFile string
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return err
				}
				body = string(data)
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.DraftPost(ctx, topic, tone, body)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "post topic")
	cmd.Flags().StringVar(&tone, "tone", "", "writing tone (professional, casual, inspirational, educational, storytelling)")
	cmd.Flags().StringVar(&body, "body", "", "custom body text; generated from the topic when empty")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "read custom body from file")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func listCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				posts, err := e.ListPosts(ctx, status)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(posts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Topic", "Tone", "Status", "Scheduled", "Updated"})
				for _, p := range posts {
					scheduled := ""
					if p.ScheduledTime != nil {
						scheduled = p.ScheduledTime.Format(time.RFC3339)
					}
					tw.AppendRow(table.Row{p.ID, p.Topic, p.Tone, p.Status, scheduled, p.UpdatedAt.Format(time.RFC3339)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft, scheduled, published)")
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.GetPost(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	return cmd
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <post-id>",
		Short: "Score a post's engagement potential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.ScorePost(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(s)
			})
		},
	}
	return cmd
}

func editCmd() *cobra.Command {
	var hook, body, bodyFile, cta string
	cmd := &cobra.Command{
		Use:   "edit <post-id>",
		Short: "Replace a draft's content and re-score it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return err
				}
				body = string(data)
			}
			if body == "" {
				return fmt.Errorf("--body or --body-file required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				content := domain.Content{Hook: hook, Body: body, CallToAction: cta}
				p, score, err := e.UpdateContent(ctx, args[0], content)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]any{"post": p, "score": score})
			})
		},
	}
	cmd.Flags().StringVar(&hook, "hook", "", "opening hook")
	cmd.Flags().StringVar(&body, "body", "", "body text")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "read body from file")
	cmd.Flags().StringVar(&cta, "cta", "", "call to action")
	return cmd
}

func hashtagsCmd() *cobra.Command {
	var topic, industry, postID string
	cmd := &cobra.Command{
		Use:   "hashtags",
		Short: "Suggest hashtags for a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				suggestions, err := e.SuggestHashtags(ctx, topic, industry, postID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(suggestions)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Hashtag", "Category"})
				for _, s := range suggestions {
					tw.AppendRow(table.Row{"#" + s.Tag, s.Category})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "post topic")
	cmd.Flags().StringVar(&industry, "industry", "", "industry hint")
	cmd.Flags().StringVar(&postID, "post", "", "attach suggestions to this draft")
	return cmd
}

func timesCmd() *cobra.Command {
	var timezone, industry string
	cmd := &cobra.Command{
		Use:   "times",
		Short: "Recommended posting windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				windows, err := e.OptimalTimes(ctx, timezone, industry)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(windows)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Day", "Hour", "Confidence", "Reason"})
				for _, w := range windows {
					tw.AppendRow(table.Row{w.Day, fmt.Sprintf("%02d:00", w.Hour), fmt.Sprintf("%.2f", w.Confidence), w.Reason})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone")
	cmd.Flags().StringVar(&industry, "industry", "", "industry hint")
	return cmd
}

func scheduleCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "schedule <post-id>",
		Short: "Schedule a draft for publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("--at must be RFC 3339, e.g. 2026-09-01T09:00:00Z: %w", err)
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.SchedulePost(ctx, args[0], when)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "publication time, RFC 3339")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <post-id>",
		Short: "Publish a post now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.PublishPost(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	return cmd
}

func calendarCmd() *cobra.Command {
	var topics []string
	var days int
	var start, industry, timezone string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Plan a posting calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := planner.Request{Topics: topics, Days: days, Industry: industry, Timezone: timezone}
			if start != "" {
				t, err := time.Parse("2006-01-02", start)
				if err != nil {
					return fmt.Errorf("--start must be YYYY-MM-DD: %w", err)
				}
				req.Start = t
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				entries, err := e.PlanCalendar(ctx, req)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Date", "Day", "Topic", "Type", "Window"})
				for _, entry := range entries {
					window := fmt.Sprintf("%s %02d:00", entry.Window.Day, entry.Window.Hour)
					tw.AppendRow(table.Row{entry.Date.Format("2006-01-02"), entry.Date.Weekday(), entry.Topic, entry.ContentType, window})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&topics, "topics", nil, "topics to cycle through")
	cmd.Flags().IntVar(&days, "days", 7, "number of posts to plan")
	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD, defaults to today")
	cmd.Flags().StringVar(&industry, "industry", "", "industry hint")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone")
	_ = cmd.MarkFlagRequired("topics")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Settings and preferences"}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configSetToneCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.GetSettings(ctx)
				if err != nil {
					return err
				}
				return printJSONOrTable(s)
			})
		},
	}
	return cmd
}

func configSetToneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-tone <tone>",
		Short: "Set the default drafting tone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.SetDefaultTone(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(s)
			})
		},
	}
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default postline.yml to the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")
	return cmd
}

func authCmd() *cobra.Command {
	auth := &cobra.Command{Use: "auth", Short: "Platform authentication"}
	auth.AddCommand(authLoginCmd())
	auth.AddCommand(authStatusCmd())
	auth.AddCommand(authLogoutCmd())
	return auth
}

func authLoginCmd() *cobra.Command {
	var clientID, clientSecret string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the platform via OAuth2",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" {
				clientID = viper.GetString("client-id")
			}
			if clientSecret == "" {
				clientSecret = viper.GetString("client-secret")
			}
			if clientID == "" || clientSecret == "" {
				return fmt.Errorf("--client-id and --client-secret (or POSTLINE_CLIENT_ID / POSTLINE_CLIENT_SECRET) required")
			}
			workspace := viper.GetString("workspace")
			st, err := store.Open(workspace)
			if err != nil {
				return err
			}
			flow := linkedin.NewOAuth(clientID, clientSecret)
			fmt.Println("Visit this URL to authorize:")
			fmt.Println(" ", flow.AuthorizeURL())
			fmt.Println("Waiting for the callback on", flow.RedirectURI(), "...")
			code, err := flow.WaitForCode(cmd.Context())
			if err != nil {
				return err
			}
			creds, err := flow.ExchangeCode(cmd.Context(), linkedin.NewClient(), code)
			if err != nil {
				return err
			}
			if err := linkedin.SaveCredentials(st.Dir(), creds); err != nil {
				return err
			}
			fmt.Println("Authenticated as", creds.PersonURN, "until", creds.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	return cmd
}

func authStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication state",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			creds, err := linkedin.LoadCredentials(st.Dir())
			if err != nil {
				if domain.IsKind(err, domain.KindNotAuthenticated) {
					fmt.Println("not authenticated")
					return nil
				}
				return err
			}
			state := "valid"
			if creds.Expired(time.Now()) {
				state = "expired"
			}
			return printJSONOrTable(map[string]any{
				"person_urn": creds.PersonURN,
				"expires_at": creds.ExpiresAt,
				"state":      state,
			})
		},
	}
	return cmd
}

func authLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Delete stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if err := linkedin.DeleteCredentials(st.Dir()); err != nil {
				return err
			}
			fmt.Println("credentials removed")
			return nil
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "The diary of everything that happened: drafts, schedules, publications.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recent events",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(db.Config{Workspace: viper.GetString("workspace")})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			items, err := events.Tail(cmd.Context(), conn, limit)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"TS", "Type", "Post", "Actor"})
			for _, ev := range items {
				tw.AppendRow(table.Row{ev.TS, ev.Type, ev.PostID, ev.Actor})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of events")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				authCfg := server.AuthConfig{JWTSecret: os.Getenv("POSTLINE_JWT_SECRET")}
				handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				if authCfg.JWTSecret == "" {
					fmt.Println("POSTLINE_JWT_SECRET not set; serving without authentication")
				}
				fmt.Printf("Serving Postline API on http://%s%s (OpenAPI at %s/openapi.json)\n", addr, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}
