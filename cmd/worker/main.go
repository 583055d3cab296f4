// cmd/worker/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/nfields/obscura-backend/internal/config"
	"github.com/nfields/obscura-backend/internal/plugin"
	"github.com/nfields/obscura-backend/internal/queue"
	"github.com/nfields/obscura-backend/internal/repository"
	"github.com/nfields/obscura-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer logger.Sync()

	// Connect to DB
	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	defer db.Close()

	campaignRepo := &repository.CampaignRepository{DB: db}
	snapshotRepo := &repository.SnapshotRepository{DB: db}
	lookupRepo := &repository.LookupRepository{DB: db}

	sources := plugin.NewSourceRegistry()
	for _, name := range cfg.EnabledSources {
		sources.Register(plugin.NewHTTPSource(name, cfg.SourceGateway))
	}

	snapshotService := &service.SnapshotService{
		CampaignRepo: campaignRepo,
		SnapshotRepo: snapshotRepo,
		Lookup: &service.LookupService{
			Sources:        sources,
			LookupRepo:     lookupRepo,
			EnabledSources: cfg.EnabledSources,
			Logger:         logger,
		},
		Logger: logger,
	}

	// Connect to RabbitMQ
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue.SnapshotTopic, // name
		true,                // durable
		false,               // delete when unused
		false,               // exclusive
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job queue.SnapshotJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Println("Invalid job:", err)
				d.Ack(false)
				continue
			}

			if err := processJob(job, snapshotService); err != nil {
				log.Println("Failed to process snapshot job:", err)
				// Retry logic: requeue up to 3 times
				var retryCount int
				if d.Headers["x-retry-count"] != nil {
					retryCount, _ = d.Headers["x-retry-count"].(int)
				}
				if retryCount < 3 {
					d.Nack(false, true) // requeue
					continue
				}
			}

			d.Ack(false)
		}
	}()

	log.Println("Worker running, waiting for snapshot jobs...")
	<-forever
}

func processJob(job queue.SnapshotJob, svc *service.SnapshotService) error {
	snapshot, err := svc.TakeSnapshot(context.Background(), job.CampaignID, job.SnapshotType)
	if err != nil {
		return err
	}
	log.Printf("Snapshot %d taken for campaign %d (job %s)\n", snapshot.ID, job.CampaignID, job.JobID)
	return nil
}
