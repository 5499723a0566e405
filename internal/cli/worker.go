package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/starlog/internal/metrics"
	"github.com/raphaelgruber/starlog/internal/queue"
)

var workerAllFlag bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Reconcile the archive and vector index with the store",
	Long: `Worker re-runs the vectorize pipeline. By default it picks up
episodes whose rendered document was never archived, for example after
an earlier run exhausted its retries. With --all it re-renders and
re-indexes every episode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		ctx := context.Background()

		ids, err := st.ListEpisodeIDs(ctx, owner, !workerAllFlag)
		if err != nil {
			return fmt.Errorf("listing episodes: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("Nothing to do.")
			return nil
		}

		for _, id := range ids {
			if err := vq.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: id}); err != nil {
				return fmt.Errorf("enqueueing episode %s: %w", id, err)
			}
		}
		if err := flushQueue(ctx); err != nil {
			return err
		}

		printSnapshot(stats.Snapshot())
		return nil
	},
}

func printSnapshot(s metrics.Snapshot) {
	fmt.Printf("Processed %d, skipped %d, retried %d\n",
		s.MessagesProcessed, s.MessagesSkipped, s.MessagesRetried)
	printOp("embedding", s.Embedding)
	printOp("blob put", s.BlobPut)
	printOp("vector upsert", s.VectorUpsert)
	printOp("db query", s.DBQuery)
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Printf("  %-14s %4d calls, avg %.0fms (min %dms, max %dms)\n",
		name, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

func init() {
	workerCmd.Flags().BoolVar(&workerAllFlag, "all", false, "re-vectorize every episode")
}
