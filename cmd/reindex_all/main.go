package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/docvault-backend/internal/app"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var docs idList
	var dryRun bool
	var limit int
	var concurrency int
	var failFast bool
	flag.Var(&docs, "doc", "document id to reindex (repeatable); all documents when omitted")
	flag.BoolVar(&dryRun, "dry-run", false, "print the documents that would be reindexed")
	flag.IntVar(&limit, "limit", 0, "limit number of documents processed")
	flag.IntVar(&concurrency, "concurrency", 0, "documents reindexed in parallel (default REINDEX_CONCURRENCY)")
	flag.BoolVar(&failFast, "fail-fast", false, "stop at the first failed document")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()
	log := application.Log.With("cmd", "reindex_all")

	var ids []uuid.UUID
	if len(docs) > 0 {
		for _, s := range docs {
			id, err := uuid.Parse(strings.TrimSpace(s))
			if err == nil && id != uuid.Nil {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			fmt.Println("no valid document ids provided")
			return
		}
	} else {
		ids, err = application.Documents.ListDocumentIDs(ctx)
		if err != nil {
			fmt.Printf("list documents: %v\n", err)
			os.Exit(1)
		}
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	if dryRun {
		for _, id := range ids {
			fmt.Printf("[dry-run] reindex document_id=%s\n", id)
		}
		fmt.Printf("done; planned=%d\n", len(ids))
		return
	}

	if concurrency <= 0 {
		concurrency = application.Cfg.ReindexConcurrency
	}
	var ok, failed, chunks atomic.Int64

	// one goroutine per document; a document's reindex is never split
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			n, err := application.Documents.ReindexCurrent(gctx, id)
			if err != nil {
				failed.Add(1)
				log.Warn("reindex failed", "document_id", id, "error", err)
				if failFast {
					return fmt.Errorf("document %s: %w", id, err)
				}
				return nil
			}
			ok.Add(1)
			chunks.Add(int64(n))
			log.Info("reindexed", "document_id", id, "chunks", n)
			return nil
		})
	}
	err = g.Wait()

	fmt.Printf("done; reindexed=%d failed=%d chunks=%d\n", ok.Load(), failed.Load(), chunks.Load())
	if err != nil {
		fmt.Printf("stopped: %v\n", err)
		os.Exit(1)
	}
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
