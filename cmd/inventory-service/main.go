package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockkeep/inventory-service/internal/assist"
	"github.com/stockkeep/inventory-service/internal/config"
	httpAPI "github.com/stockkeep/inventory-service/internal/http"
	"github.com/stockkeep/inventory-service/internal/http/controller"
	"github.com/stockkeep/inventory-service/internal/logger"
	"github.com/stockkeep/inventory-service/internal/metrics"
	"github.com/stockkeep/inventory-service/internal/repository/sql"
	"github.com/stockkeep/inventory-service/internal/service"
	sqspkg "github.com/stockkeep/inventory-service/internal/sqs"
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)

	productRepository := sql.NewProductRepository(db)
	eventRepository := sql.NewEventRepository(db)
	transactionalRepository := sql.NewTransactionalRepository(db)

	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
	handleErr("creating SQS client", err)
	sqsPublisher := sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)

	// The assist service is optional; its endpoints answer 503 when it is
	// not configured.
	var assistClient service.AssistClient
	if conf.Assist.APIURL != "" {
		assistClient = assist.NewClient(conf.Assist.APIURL, conf.Assist.APIKey, conf.Assist.Model)
	}

	productService := service.NewProductService(productRepository, transactionalRepository, assistClient)

	outboxWorker := service.NewOutboxWorker(eventRepository, sqsPublisher, 2*time.Second)
	go outboxWorker.Start(ctx)

	ctr := controller.New(conf)
	productCtr := controller.NewProductController(productService)
	assistCtr := controller.NewAssistController(productService)

	httpServer := gin.New()
	httpServer = httpAPI.InitRouter(conf, httpServer, ctr, productCtr, assistCtr)

	go func() {
		if err := httpServer.Run(":" + conf.HTTPServer.Port); err != nil {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down gracefully...")
	outboxWorker.Stop()
	cancel()
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
