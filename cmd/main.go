package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"orderbot/audit"
	"orderbot/carrier"
	"orderbot/config"
	"orderbot/logger"
	"orderbot/order"
	"orderbot/pipeline"
	"orderbot/quote"
	"orderbot/schedule"
	"orderbot/sheet"
	"orderbot/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "./config.yaml", "path to the config file")
	sheetPath := flag.String("sheet", "", "orders workbook, overrides the config")
	rate := flag.Float64("rate", 0, "carrier requests per second, overrides the config")
	flag.Parse()

	conf := config.ParseConfig(*configPath)
	if *sheetPath != "" {
		conf.Sheet.Path = *sheetPath
	}
	if *rate > 0 {
		conf.Pipeline.RateLimitPerSec = *rate
	}

	runLogger := log.New()
	logger.SetupLogging(conf, runLogger)

	auth := carrier.NewTokenProvider(conf.Carrier.TokenURL, conf.Carrier.APIKey, conf.Carrier.APISecret,
		conf.Carrier.TokenCachePath, nil)
	ctx := context.Background()
	// no request can be authorized without a token, so this failure is fatal
	if _, err := auth.Token(ctx, false); err != nil {
		runLogger.Fatalln(err)
	}

	client := carrier.NewClient(conf.Carrier.BaseURL, auth,
		&http.Client{Timeout: time.Duration(conf.Carrier.TimeoutSec) * time.Second},
		carrier.RetryPolicy{
			MaxAttempts: conf.Carrier.Retry.MaxAttempts,
			Backoff:     time.Duration(conf.Carrier.Retry.BackoffMs) * time.Millisecond,
			MaxBackoff:  time.Duration(conf.Carrier.Retry.MaxBackoffMs) * time.Millisecond,
		})

	loader := sheet.NewLoader(conf.Sheet.Name, sheet.DefaultMapping(), runLogger)
	records, err := loader.Load(conf.Sheet.Path)
	if err != nil {
		runLogger.Fatalln("cant load orders: " + err.Error())
	}

	var placed store.Store
	if conf.Database.DSN != "" {
		placed, err = store.NewPgStore(conf.Database.DSN, runLogger)
		if err != nil {
			runLogger.Fatalln("cant open placed-orders store: " + err.Error())
		}
	}

	sink := buildSink(conf, runLogger)
	defer func() {
		if err := sink.Close(); err != nil {
			runLogger.Errorln(err)
		}
	}()

	p := pipeline.New(
		schedule.NewFilter(runLogger),
		quote.NewStage(client, conf.Pipeline.RateLimitPerSec, runLogger),
		order.NewStage(client, conf.Pipeline.RateLimitPerSec, runLogger),
		placed, sink, runLogger,
	)
	rep := p.Run(ctx, records)

	fmt.Printf("Day: %v\n", rep.Weekday)
	fmt.Printf("Total processed: %v\n", rep.Total)
	fmt.Printf("Successful: %v\n", len(rep.Successes))
	fmt.Printf("Failed: %v\n", len(rep.Failures))
	fmt.Printf("Success rate: %.1f%%\n", rep.SuccessRate())

	if rep.Total > 0 && len(rep.Successes) == 0 {
		return 1
	}
	return 0
}

func buildSink(conf config.Config, runLogger *log.Logger) audit.Sink {
	sinks := []audit.Sink{}
	if conf.Audit.ExcelPath != "" {
		sinks = append(sinks, audit.NewExcelSink(conf.Audit.ExcelPath, runLogger))
	}
	if len(conf.Audit.Kafka.Brokers) > 0 {
		dumper := audit.NewSimpleDumper(conf.Audit.DumpFile, int64(conf.Audit.MaxDumpSize))
		spill := audit.NewSpillBuffer(dumper, conf.Audit.MaxBufSize, runLogger)
		sinks = append(sinks, audit.NewKafkaSink(conf.Audit.Kafka.Brokers, conf.Audit.Kafka.Topic,
			time.Duration(conf.Audit.Kafka.WriteTimeOutSec)*time.Second, spill, runLogger))
	}
	return &audit.MultiSink{Sinks: sinks, Logger: runLogger}
}
