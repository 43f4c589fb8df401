package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"bookcatalog/internal/util"
	"bookcatalog/pkg/catalogclient"
	"bookcatalog/services/catalog/internal/contract"
)

func main() {
	baseURL := flag.String("url", "http://localhost:5000", "catalog base URL")
	timeout := flag.Duration("timeout", 60*time.Second, "overall deadline")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	util.InitLogger(*logLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results := contract.Run(ctx, catalogclient.NewClient(*baseURL))
	failed := 0
	for _, r := range results {
		if r.Passed() {
			slog.Info("contract case passed", "case", r.Name, "duration_ms", r.Duration.Milliseconds())
			continue
		}
		failed++
		slog.Error("contract case failed", "case", r.Name, "err", r.Err)
	}
	fmt.Printf("%d/%d contract cases passed against %s\n", len(results)-failed, len(results), *baseURL)
	if failed > 0 {
		os.Exit(1)
	}
}
