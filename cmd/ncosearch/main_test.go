package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func logLevelApp() *cli.App {
	return &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
			},
		},
		Before: setupLogger,
		Action: func(c *cli.Context) error {
			return nil
		},
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := logLevelApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				err := logLevelApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := logLevelApp().Run([]string{"test", "--log-level", "loud"})
		assert.Error(t, err)
	})

	t.Run("alias", func(t *testing.T) {
		err := logLevelApp().Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestCommandArgumentValidation(t *testing.T) {
	app := &cli.App{
		Name: "test",
		Commands: []*cli.Command{
			{Name: "search", Action: searchCommand},
			{Name: "get", Action: getCommand},
			{
				Name:   "synonyms",
				Action: synonymsCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "add"},
					&cli.StringSliceFlag{Name: "remove"},
				},
			},
		},
	}

	t.Run("search requires query", func(t *testing.T) {
		err := app.Run([]string{"test", "search"})
		assert.ErrorContains(t, err, "query text is required")
	})

	t.Run("get requires code", func(t *testing.T) {
		err := app.Run([]string{"test", "get"})
		assert.ErrorContains(t, err, "occupation code is required")
	})

	t.Run("synonyms requires an edit", func(t *testing.T) {
		err := app.Run([]string{"test", "synonyms", "7212.0200"})
		assert.ErrorContains(t, err, "nothing to do")
	})
}

func TestMain(m *testing.M) {
	// Keep test output quiet regardless of the developer's default logger.
	slog.SetLogLoggerLevel(slog.LevelError)
	os.Exit(m.Run())
}
