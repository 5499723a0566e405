// Package cli provides the command-line interface for starlog.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/starlog/internal/blob"
	"github.com/raphaelgruber/starlog/internal/config"
	"github.com/raphaelgruber/starlog/internal/llm"
	"github.com/raphaelgruber/starlog/internal/metrics"
	"github.com/raphaelgruber/starlog/internal/queue"
	"github.com/raphaelgruber/starlog/internal/service"
	"github.com/raphaelgruber/starlog/internal/store"
	"github.com/raphaelgruber/starlog/internal/vector"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose  bool
	userFlag string

	// Global config and stores
	cfg        config.Config
	st         *store.Store
	vq         *queue.Queue
	stats      *metrics.Collector
	logCleanup func() error

	// Lazy-initialized components
	vecClient *vector.Client
	vecIndex  *vector.Index
	blobStore *blob.Store
	embedder  *llm.Embedder
	model     *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "starlog",
	Short: "Career history tracker with STAR episodes",
	Long: `Starlog records your career history: companies, projects, free-form
work logs and tags. Logs can be distilled into STAR-format episodes
(Situation, Task, Action, Result) which are archived as markdown and
indexed for semantic search.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, cleanup := config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		logCleanup = cleanup

		var err error
		st, err = store.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		slog.Debug("store opened", "path", st.Path())

		vq = queue.New(cfg.QueueBuffer, cfg.QueueMaxAttempts)
		stats = metrics.NewCollector()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if vecClient != nil {
			if err := vecClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close vector index: %v\n", err)
			}
		}
		if st != nil {
			if err := st.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
		if logCleanup != nil {
			logCleanup()
		}
	},
}

// ownerID resolves the acting user from --user or configuration.
func ownerID() (string, error) {
	if userFlag != "" {
		return userFlag, nil
	}
	if cfg.DefaultUser != "" {
		return cfg.DefaultUser, nil
	}
	return "", fmt.Errorf("no user configured: pass --user or set STARLOG_USER")
}

// getIndex lazily connects to the vector index and its embedder.
func getIndex(ctx context.Context) (*vector.Index, error) {
	if vecIndex != nil {
		return vecIndex, nil
	}

	var err error
	embedder, err = llm.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	vecClient, err = vector.NewClient(ctx, vector.Config{
		URL:       cfg.SurrealURL,
		Namespace: cfg.SurrealNamespace,
		Database:  cfg.SurrealDatabase,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
		AuthLevel: cfg.SurrealAuthLevel,
		Dimension: embedder.Dimension(),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to vector index: %w", err)
	}
	if err := vecClient.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("initialize vector schema: %w", err)
	}

	vecIndex = vector.NewIndex(vecClient, timedEmbedder{inner: embedder, stats: stats})
	return vecIndex, nil
}

// timedEmbedder feeds embedding latency into the metrics collector.
type timedEmbedder struct {
	inner *llm.Embedder
	stats *metrics.Collector
}

func (t timedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := t.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	t.stats.RecordTiming(metrics.OpEmbedding, time.Since(start))
	return vec, nil
}

// getBlobStore lazily creates the object store client.
func getBlobStore(ctx context.Context) (*blob.Store, error) {
	if blobStore != nil {
		return blobStore, nil
	}

	var err error
	blobStore, err = blob.NewStore(ctx, blob.Config{
		Bucket:   cfg.BlobBucket,
		Endpoint: cfg.BlobEndpoint,
		Region:   cfg.BlobRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	return blobStore, nil
}

// getModel lazily creates the draft LLM.
func getModel() (*llm.Model, error) {
	if model != nil {
		return model, nil
	}

	var err error
	model, err = llm.NewModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	return model, nil
}

// getEpisodeService wires the full episode pipeline.
func getEpisodeService(ctx context.Context, withModel bool) (*service.Episodes, error) {
	index, err := getIndex(ctx)
	if err != nil {
		return nil, err
	}
	blobs, err := getBlobStore(ctx)
	if err != nil {
		return nil, err
	}

	var draftModel service.DraftModel
	if withModel {
		m, err := getModel()
		if err != nil {
			return nil, err
		}
		draftModel = m
	}

	return service.NewEpisodes(st, vq, blobs, index, draftModel), nil
}

// flushQueue drains pending vectorize events synchronously so one-shot
// commands leave the archive and index consistent before exiting.
func flushQueue(ctx context.Context) error {
	if vq.Len() == 0 {
		return nil
	}

	index, err := getIndex(ctx)
	if err != nil {
		return err
	}
	blobs, err := getBlobStore(ctx)
	if err != nil {
		return err
	}

	v := service.NewVectorizer(st, blobs, index, stats)
	for vq.Len() > 0 {
		batch, err := vq.Receive(ctx, cfg.WorkerBatchSize)
		if err != nil {
			return err
		}
		v.ProcessBatch(ctx, batch)
	}

	if dead := vq.DeadLetter(); len(dead) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d event(s) exhausted retries\n", len(dead))
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "acting user id")

	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(episodeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(workerCmd)
}
