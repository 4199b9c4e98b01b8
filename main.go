package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"customer-analytics/config"
	"customer-analytics/coordinator"
	"customer-analytics/models"
	"customer-analytics/services"
	"customer-analytics/source"
	"customer-analytics/storage"
	"customer-analytics/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	sourceFlag := flag.String("source", "", "table source: file path, http(s) URL, or database DSN (overrides TABLE_SOURCE)")
	customer := flag.String("customer", "", "customer id to summarize")
	report := flag.Bool("report", false, "batch report over all customers")
	export := flag.Bool("export", false, "export all summaries to SUMMARY_CSV_PATH")
	watch := flag.Bool("watch", false, "read customer ids from stdin (one per line) and resolve interactively")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()
	logger.SetVerbose(*verbose)

	target := cfg.TableSource
	if *sourceFlag != "" {
		target = *sourceFlag
	}

	logger.Info("=== POS Customer Analytics starting ===")
	logger.Info("Config — source: %s | regular threshold: %d visits | retention: %.2f | concurrency: %d",
		target, cfg.RegularVisitThreshold, cfg.RetentionFactor, cfg.MaxConcurrency)

	src, err := source.ForTarget(target, source.Options{
		MaxRetries: cfg.MaxRetries,
		RetryBase:  time.Duration(cfg.RetryBaseMs) * time.Millisecond,
		TableName:  cfg.TableName,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("Bad table source: %v", err)
		os.Exit(1)
	}

	summarizer := services.NewSummarizer(services.Options{
		RegularVisitThreshold: cfg.RegularVisitThreshold,
		RetentionFactor:       cfg.RetentionFactor,
	})
	coord := coordinator.New(summarizer, logger)
	defer coord.Close()

	if err := coord.Load(context.Background(), src); err != nil {
		logger.Error("Table load failed: %v", err)
		os.Exit(1)
	}
	ids := coord.CustomerIDs()
	logger.Info("Loaded %d customers", len(ids))

	reportSvc := services.NewReportService(logger)

	if *customer != "" {
		coord.Search(*customer)
		if err := coord.Err(); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		reportSvc.PrintSummary(coord.Summary())
	}

	if *report || *export {
		summaries := summarizeAll(coord, summarizer, ids, cfg.MaxConcurrency)

		if *report {
			reportSvc.Print(reportSvc.Generate(summaries))
		}
		if *export {
			writer, err := storage.NewCSVWriter(cfg.SummaryCSVPath)
			if err != nil {
				logger.Error("Failed to create summary CSV: %v", err)
				os.Exit(1)
			}
			if err := exportSummaries(writer, summaries); err != nil {
				logger.Error("Summary CSV write failed: %v", err)
			} else {
				logger.Info("Summaries exported to %s", cfg.SummaryCSVPath)
			}
		}
	}

	if *watch {
		runWatch(coord, reportSvc, logger)
	}

	if *customer == "" && !*report && !*export && !*watch {
		fmt.Println("\nCustomers in dataset:")
		for _, id := range ids {
			fmt.Printf("  %s\n", id)
		}
		fmt.Println("\nRun with -customer ID, -report, -export or -watch.")
	}
}

// summarizeAll computes every customer's summary concurrently. Each
// job works on a disjoint record group, so the pool needs no locking
// beyond the result slots.
func summarizeAll(coord *coordinator.Coordinator, summarizer *services.Summarizer, ids []string, concurrency int) []*models.CustomerSummary {
	bar := progressbar.Default(int64(len(ids)))
	pool := utils.NewWorkerPool(concurrency)
	results := make([]*models.CustomerSummary, len(ids))

	for i, id := range ids {
		i, id := i, id
		pool.Submit(func() {
			if records, ok := coord.Records(id); ok {
				results[i] = summarizer.Summarize(id, records)
			}
			_ = bar.Add(1)
		})
	}
	pool.Wait()

	summaries := make([]*models.CustomerSummary, 0, len(results))
	for _, s := range results {
		if s != nil {
			summaries = append(summaries, s)
		}
	}
	return summaries
}

func exportSummaries(writer storage.SummaryWriter, summaries []*models.CustomerSummary) error {
	defer writer.Close()
	return writer.Write(summaries)
}

// runWatch feeds stdin lines through the identity event feed, the same
// path a scanning device would use.
func runWatch(coord *coordinator.Coordinator, reportSvc *services.ReportService, logger *utils.Logger) {
	feed := coordinator.NewFeed()
	coord.AttachFeed(feed)
	defer feed.Close()

	logger.Info("Watching stdin for customer ids (Ctrl-D to quit)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		feed.Set(scanner.Text())
		// Feed delivery is asynchronous; give the consumer a beat
		// before reading the outcome.
		time.Sleep(50 * time.Millisecond)
		if err := coord.Err(); err != nil {
			logger.Warn("%v", err)
		} else if s := coord.Summary(); s != nil {
			reportSvc.PrintSummary(s)
		}
	}
}
