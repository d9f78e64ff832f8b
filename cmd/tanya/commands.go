package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hyperjump/tanya/internal/cli"
	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/extract"
	"github.com/hyperjump/tanya/internal/ingest"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/status"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// defaultContextLen is how much retrieved context the text output shows.
const defaultContextLen = 300

var (
	userID       int64
	outputFormat string
	serverURL    string
	contextLen   int
	caption      string

	newUser models.UserInput
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest documents into the vector index",
	Long: `Ingests each file into the vector index.
With --user the file is first stored as an upload owned by that user,
exactly as an API upload would be. Without it the file is indexed in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Ask a question about the ingested documents",
	Long: `Retrieves the closest chunks, asks the generative model and records the exchange
in the user's chat history. Multi-word questions work with or without quotes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a user's chat history, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show record counts, index size and configuration",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a user",
	Args:  cobra.NoArgs,
	RunE:  runUserAdd,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "Write a config file with the default settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runInitConfig,
}

func init() {
	ingestCmd.Flags().Int64Var(&userID, "user", 0, "store the file as an upload owned by this user id")
	ingestCmd.Flags().StringVar(&caption, "caption", "", "caption for the stored upload")
	ingestCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")

	queryCmd.Flags().Int64Var(&userID, "user", 0, "id of the asking user (required)")
	queryCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	queryCmd.Flags().StringVar(&serverURL, "server", "", "server URL (empty = use direct storage)")
	queryCmd.Flags().IntVar(&contextLen, "context-len", defaultContextLen, "characters of retrieved context shown in text output")

	historyCmd.Flags().Int64Var(&userID, "user", 0, "user id (required)")
	historyCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")

	statusCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	statusCmd.Flags().StringVar(&serverURL, "server", "", "server URL (empty = use direct storage)")

	userAddCmd.Flags().StringVar(&newUser.Username, "username", "", "username")
	userAddCmd.Flags().StringVar(&newUser.Email, "email", "", "email address")
	userAddCmd.Flags().StringVar(&newUser.Password, "password", "", "password")
	userAddCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "first name")
	userAddCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "last name")
	userAddCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	userCmd.AddCommand(userAddCmd)

	rootCmd.AddCommand(ingestCmd, queryCmd, historyCmd, statusCmd, userCmd, initConfigCmd)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// withComponents loads config, wires the components and runs fn with them.
func withComponents(ctx context.Context, withGenerator bool, fn func(*config.Config, *Components) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	components, err := initializeComponents(ctx, cfg, logger, withGenerator)
	if err != nil {
		return err
	}
	defer components.Close()
	return fn(cfg, components)
}

func runIngest(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	return withComponents(ctx, false, func(cfg *config.Config, c *Components) error {
		if userID > 0 {
			if _, err := c.Accounts.GetUser(ctx, userID); err != nil {
				return err
			}
		}
		var bar *progressbar.ProgressBar
		if len(args) > 1 && format == cli.OutputText {
			bar = newProgressBar(cmd.ErrOrStderr(), len(args), "Ingesting")
		}
		failed := 0
		for _, path := range args {
			var res *models.IngestResult
			var err error
			if userID > 0 {
				res, err = ingestUpload(ctx, cfg, c, path)
			} else {
				res, err = c.Ingestor.IngestPath(ctx, path, ingest.Source{})
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			if err != nil {
				failed++
				fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("Ingesting %s failed: %v", path, err))
				continue
			}
			if err := cli.WriteIngestResult(cmd.OutOrStdout(), filepath.Base(path), res, format); err != nil {
				return err
			}
		}
		if bar != nil {
			_ = bar.Finish()
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
		}
		return nil
	})
}

// ingestUpload stores path as an upload of userID and ingests the stored copy.
// Formats without a text loader are refused before anything is stored.
func ingestUpload(ctx context.Context, cfg *config.Config, c *Components, path string) (*models.IngestResult, error) {
	if ext := filepath.Ext(path); !extract.Supported(ext) {
		return nil, fmt.Errorf("%w: %q", extract.ErrUnsupportedFormat, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := filepath.Base(path)
	stored, size, err := c.Uploads.Save(f, name, cfg.Server.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	rec := &models.File{
		UserID:       userID,
		Path:         stored,
		OriginalName: name,
		Caption:      caption,
		Size:         size,
	}
	if err := c.Storage.CreateFile(ctx, rec); err != nil {
		_ = c.Uploads.Remove(stored)
		return nil, fmt.Errorf("create file record: %w", err)
	}
	return c.Ingestor.Ingest(ctx, rec.ID)
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	req := &models.QueryRequest{UserID: userID, Query: buildQuery(args)}
	if serverURL != "" {
		ans, err := queryViaHTTP(cmd.Context(), serverURL, req)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return cli.WriteAnswer(cmd.OutOrStdout(), ans, format, contextLen)
	}
	ctx := cmd.Context()
	return withComponents(ctx, true, func(_ *config.Config, c *Components) error {
		ans, err := c.RAG.Answer(ctx, req.UserID, req.Query)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return cli.WriteAnswer(cmd.OutOrStdout(), ans, format, contextLen)
	})
}

func runHistory(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	if userID <= 0 {
		return errors.New("--user is required")
	}
	ctx := cmd.Context()
	return withComponents(ctx, false, func(_ *config.Config, c *Components) error {
		if _, err := c.Accounts.GetUser(ctx, userID); err != nil {
			return err
		}
		msgs, err := c.Storage.ListMessagesByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list chat history: %w", err)
		}
		return cli.WriteHistory(cmd.OutOrStdout(), msgs, format)
	})
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	if serverURL != "" {
		st, err := statusViaHTTP(cmd.Context(), serverURL)
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		return cli.WriteStatus(cmd.OutOrStdout(), st, format)
	}
	ctx := cmd.Context()
	return withComponents(ctx, false, func(cfg *config.Config, c *Components) error {
		st, err := status.Collect(ctx, c.Storage, c.Index, cfg)
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		return cli.WriteStatus(cmd.OutOrStdout(), st, format)
	})
}

func runUserAdd(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	return withComponents(ctx, false, func(_ *config.Config, c *Components) error {
		u, err := c.Accounts.CreateUser(ctx, newUser)
		if err != nil {
			return err
		}
		return cli.WriteUser(cmd.OutOrStdout(), u, format)
	})
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	cmd.Printf("Wrote default config to %s\n", path)
	return nil
}
