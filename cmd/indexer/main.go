package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dentara/backend/internal/adapters/database"
	"github.com/dentara/backend/internal/adapters/search"
	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/internal/infrastructure/clients/postgres"
	"github.com/dentara/backend/internal/infrastructure/clients/typesense"
	"github.com/dentara/backend/pkg/config"
	"github.com/joho/godotenv"
)

const articleBatchLimit = 1000

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	articleRepo := database.NewArticleAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Deleting articles collection before reindex")
		_, err := tsClient.Client().Collection(typesense.ArticlesCollection).Delete(ctx)
		if err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	searchRepo := search.NewTypesenseAdapter(tsClient)
	if err := searchRepo.InitSchema(ctx); err != nil {
		return err
	}

	indexed := 0
	pruned := 0
	for offset := 0; ; offset += articleBatchLimit {
		articles, err := articleRepo.List(ctx, repositories.ArticleFilter{
			Limit:  articleBatchLimit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if len(articles) == 0 {
			break
		}

		publishable, stale := splitByPublication(articles)

		for _, article := range publishable {
			if err := searchRepo.Index(ctx, article); err != nil {
				log.Printf("Failed to index article %s: %v", article.Slug, err)
				continue
			}
			indexed++
		}

		// Drafts and archived articles may have been published in an earlier
		// run, so their documents are removed. A missing document is fine.
		for _, article := range stale {
			if err := searchRepo.Delete(ctx, article.ID); err != nil {
				log.Printf("Skipping index removal for %s: %v", article.Slug, err)
				continue
			}
			pruned++
		}

		if len(articles) < articleBatchLimit {
			break
		}
	}

	log.Printf("Indexing complete: %d indexed, %d removed.", indexed, pruned)
	return nil
}

// splitByPublication separates articles that belong in the search index from
// those whose documents should be removed.
func splitByPublication(articles []*entities.Article) (publishable, stale []*entities.Article) {
	for _, article := range articles {
		if article == nil {
			continue
		}
		if article.Status == entities.ArticleStatusPublished {
			publishable = append(publishable, article)
		} else {
			stale = append(stale, article)
		}
	}
	return publishable, stale
}
