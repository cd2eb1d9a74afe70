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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"newsdesk/internal/config"
	"newsdesk/internal/db"
	"newsdesk/internal/domain"
	"newsdesk/internal/index"
	"newsdesk/internal/migrate"
	"newsdesk/internal/server"
	"newsdesk/internal/workflow"
)

var rootCmd = &cobra.Command{
	Use:   "nd",
	Short: "Newsdesk CLI",
	Long: `Newsdesk is a newsroom backend: authors draft articles, editors review
them, and only published pieces are visible to the public. The CLI manages the
local workspace database and runs the HTTP API.`,
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
	viper.SetEnvPrefix("NEWSDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(articleCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(logCmd())
}

// operator is the identity CLI commands act as. Anyone with shell access to
// the workspace database already has full control, so the CLI does not
// re-authenticate.
var operator = domain.Actor{ID: "local-admin", Role: domain.RoleAdmin}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage workspace config"}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default newsdesk.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	}
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
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
			fmt.Println("database is up to date:", db.Path(workspace))
			return nil
		},
	}
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				cfg.Auth.JWTSecret = os.Getenv("NEWSDESK_JWT_SECRET")
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret (or NEWSDESK_JWT_SECRET) is required for nd serve")
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if basePath != "" {
				cfg.Server.BasePath = basePath
			}
			if _, err := db.EnsureWorkspace(workspace); err != nil {
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
			var idx index.Indexer
			if cfg.Index.Enabled {
				r := index.NewRedis(cfg.Index.RedisAddr, "", cfg.Index.RedisDB, cfg.Index.Prefix)
				defer r.Close()
				idx = r
			}
			svc := workflow.New(conn, idx)
			handler, err := server.New(server.Config{
				Service:  svc,
				BasePath: cfg.Server.BasePath,
				Auth: server.AuthConfig{
					JWTSecret:       cfg.Auth.JWTSecret,
					TokenTTLMinutes: cfg.Auth.TokenTTLMinutes,
				},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Newsdesk API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n",
				cfg.Server.Addr, cfg.Server.BasePath, cfg.Server.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (overrides config)")
	return cmd
}

func userCmd() *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage users"}
	user.AddCommand(userAddCmd())
	user.AddCommand(userListCmd())
	user.AddCommand(userRoleCmd())
	return user
}

func userAddCmd() *cobra.Command {
	var email, username, password, role string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user with an explicit role",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			return withService(cmd.Context(), func(ctx context.Context, svc workflow.Service) error {
				u, err := svc.CreateUser(ctx, email, username, password, r)
				if err != nil {
					return err
				}
				return printJSON(u)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", "reader", "role (reader, author, editor, admin)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func userListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc workflow.Service) error {
				users, err := svc.ListUsers(ctx, operator)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(users)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Email", "Username", "Role", "Active"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.Email, u.Username, u.Role, u.IsActive})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func userRoleCmd() *cobra.Command {
	var userID, role string
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Change a user's role",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			return withService(cmd.Context(), func(ctx context.Context, svc workflow.Service) error {
				u, err := svc.UpdateUserRole(ctx, operator, userID, r)
				if err != nil {
					return err
				}
				return printJSON(u)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", "", "new role")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func articleCmd() *cobra.Command {
	article := &cobra.Command{Use: "article", Short: "Inspect articles"}
	article.AddCommand(articleListCmd())
	article.AddCommand(articleShowCmd())
	return article
}

func articleListCmd() *cobra.Command {
	var status, authorID string
	var page, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !domain.Status(status).Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			return withService(cmd.Context(), func(ctx context.Context, svc workflow.Service) error {
				op := operator
				items, total, err := svc.ListArticles(ctx, &op, workflow.ListOptions{
					Status:   domain.Status(status),
					AuthorID: authorID,
					Page:     page,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"items": items, "total": total})
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Slug", "Status", "Author", "Updated"})
				for _, a := range items {
					tw.AppendRow(table.Row{a.ID, a.Title, a.Slug, a.Status, a.AuthorID, a.UpdatedAt})
				}
				tw.Render()
				fmt.Printf("total: %d\n", total)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&authorID, "author", "", "author filter")
	cmd.Flags().IntVar(&page, "page", 1, "page")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	return cmd
}

func articleShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc workflow.Service) error {
				op := operator
				a, err := svc.GetArticle(ctx, &op, args[0])
				if err != nil {
					return err
				}
				return printJSON(a)
			})
		},
	}
	return cmd
}

func categoryCmd() *cobra.Command {
	category := &cobra.Command{Use: "category", Short: "Manage categories"}
	category.AddCommand(categoryAddCmd())
	category.AddCommand(categoryListCmd())
	return category
}

func categoryAddCmd() *cobra.Command {
	var name, slug, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc workflow.Service) error {
				c, err := svc.CreateCategory(ctx, operator, domain.Category{
					Name:        name,
					Slug:        slug,
					Description: description,
				})
				if err != nil {
					return err
				}
				return printJSON(c)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "category name")
	cmd.Flags().StringVar(&slug, "slug", "", "category slug")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func categoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc workflow.Service) error {
				items, err := svc.ListCategories(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Slug"})
				for _, c := range items {
					tw.AppendRow(table.Row{c.ID, c.Name, c.Slug})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	logc := &cobra.Command{Use: "log", Short: "Audit log"}
	logc.AddCommand(logTailCmd())
	return logc
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc workflow.Service) error {
				events, err := svc.ListEvents(ctx, operator, n, evtType, entityKind, entityID)
				if err != nil {
					return err
				}
				return printJSON(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

// --- helpers ---

func withService(ctx context.Context, fn func(context.Context, workflow.Service) error) error {
	workspace := viper.GetString("workspace")
	if _, err := db.EnsureWorkspace(workspace); err != nil {
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
	return fn(ctx, workflow.New(conn, nil))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
