package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/dynamodb"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/types"
	jsoniter "github.com/json-iterator/go"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print the table definition without creating it")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if cfg.Store.Type != types.StoreTypeDynamoDB {
		logger.Infow("nothing to migrate for this store", "store", cfg.Store.Type)
		return
	}

	table := cfg.DynamoDB.TableName
	if *dryRun {
		logger.Info("Dry run mode - printing table definition without creating it")
		out, err := jsoniter.MarshalIndent(dynamodb.TableDefinition(table), "", "  ")
		if err != nil {
			logger.Fatalw("Failed to render table definition", "error", err)
		}
		fmt.Fprintln(os.Stdout, string(out))
		return
	}

	client, err := dynamodb.NewClient(cfg)
	if err != nil {
		logger.Fatalw("Failed to create dynamodb client", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Infow("ensuring document table", "table", table, "region", cfg.DynamoDB.Region)
	created, err := dynamodb.EnsureTable(ctx, client.DB(), table)
	if err != nil {
		logger.Fatalw("Failed to create document table", "error", err)
	}
	if created {
		if err := client.WaitForTable(ctx, table, time.Minute); err != nil {
			logger.Fatalw("Document table is not active", "error", err)
		}
		logger.Infow("document table created", "table", table)
	} else {
		logger.Infow("document table already exists", "table", table)
	}

	fmt.Println("Migration process completed")
}
