// Command recgen compiles a declarative record schema into Go
// persistence code, SQL DDL and documentation.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	_ "modernc.org/sqlite"

	"github.com/recgen/recgen/compiler/gen"
	"github.com/recgen/recgen/compiler/gen/doc"
	gensql "github.com/recgen/recgen/compiler/gen/sql"
	"github.com/recgen/recgen/compiler/load"
	sqldrv "github.com/recgen/recgen/dialect/sql"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	cmd := &cli.Command{
		Name:  "recgen",
		Usage: "compile a declarative record schema into persistence code",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Value:   "schema.yaml",
				Usage:   "path to the schema document",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if c.Bool("debug") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			validateCmd(),
			generateCmd(),
			installCmd(),
			docCmd(),
			watchCmd(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("recgen failed")
		os.Exit(1)
	}
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check the schema document for integrity violations",
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := load.ParseFile(c.String("schema"))
			if err != nil {
				return err
			}
			if err := load.Validate(s); err != nil {
				return err
			}
			log.Info().Int("records", len(s.Records)).Msg("schema is valid")
			return nil
		},
	}
}

func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Value:   ".",
			Usage:   "output directory for generated files",
		},
		&cli.StringFlag{
			Name:  "package",
			Value: "model",
			Usage: "package name of the generated code",
		},
		&cli.StringFlag{
			Name:  "dialect",
			Value: "sqlite",
			Usage: "DDL dialect (sqlite or postgres)",
		},
	}
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "emit the Go persistence code and DDL script",
		Flags: generateFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return generate(ctx, c)
		},
	}
}

func generate(ctx context.Context, c *cli.Command) error {
	s, err := load.ParseFile(c.String("schema"))
	if err != nil {
		return err
	}
	g, err := gen.NewGraph(gen.Config{
		Package: c.String("package"),
		Target:  c.String("target"),
	}, s)
	if err != nil {
		return err
	}
	err = gen.Generate(ctx, g,
		gensql.NewEmitter(),
		gensql.NewDDL(c.String("dialect")),
	)
	if err != nil {
		return err
	}
	log.Info().
		Str("target", c.String("target")).
		Int("types", len(g.Nodes)).
		Msg("generated")
	return nil
}

func installCmd() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "create the schema tables in a database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dialect",
				Value: "sqlite",
				Usage: "DDL dialect (sqlite or postgres)",
			},
			&cli.StringFlag{
				Name:  "driver",
				Value: "sqlite",
				Usage: "database/sql driver name",
			},
			&cli.StringFlag{
				Name:     "dsn",
				Required: true,
				Usage:    "database connection string",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := load.ParseFile(c.String("schema"))
			if err != nil {
				return err
			}
			g, err := gen.NewGraph(gen.Config{}, s)
			if err != nil {
				return err
			}
			files, err := gensql.NewDDL(c.String("dialect")).Emit(g)
			if err != nil {
				return err
			}
			drv, err := sqldrv.Open(c.String("driver"), c.String("dsn"))
			if err != nil {
				return err
			}
			defer drv.Close()
			for _, stmt := range splitStatements(string(files[0].Content)) {
				if _, err := drv.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("executing %q: %w", stmt, err)
				}
			}
			log.Info().Int("tables", len(g.Nodes)).Msg("schema installed")
			return nil
		},
	}
}

func docCmd() *cli.Command {
	return &cli.Command{
		Name:  "doc",
		Usage: "emit the markdown catalog and dot diagram",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Value:   ".",
				Usage:   "output directory for documentation files",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "catalog title",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := load.ParseFile(c.String("schema"))
			if err != nil {
				return err
			}
			g, err := gen.NewGraph(gen.Config{Target: c.String("target")}, s)
			if err != nil {
				return err
			}
			if err := gen.Generate(ctx, g, doc.NewEmitter(c.String("title"))); err != nil {
				return err
			}
			log.Info().Str("target", c.String("target")).Msg("documentation written")
			return nil
		},
	}
}

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "regenerate whenever the schema document changes",
		Flags: generateFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := generate(ctx, c); err != nil {
				log.Error().Err(err).Msg("generation failed")
			}
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			// Watch the directory: editors replace the file on save,
			// which drops a watch registered on the file itself.
			schema := c.String("schema")
			if err := watcher.Add(filepath.Dir(schema)); err != nil {
				return err
			}
			log.Info().Str("schema", schema).Msg("watching")
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) != filepath.Clean(schema) {
						continue
					}
					if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
						continue
					}
					log.Debug().Str("event", ev.String()).Msg("schema changed")
					if err := generate(ctx, c); err != nil {
						log.Error().Err(err).Msg("generation failed")
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Error().Err(err).Msg("watch error")
				}
			}
		},
	}
}

// splitStatements breaks a DDL script into single statements for
// drivers that refuse multi-statement execs.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") && !strings.Contains(stmt, "\n") {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
