// Command invoice-overdue is the scheduled Lambda that moves sent invoices
// past their due date to overdue.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/config"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/events"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/services"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/workflow"
	"go.uber.org/zap"
)

type result struct {
	Marked int `json:"marked"`
}

func handler(ctx context.Context) (result, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-central-1"
	}
	secretArn := os.Getenv("SECRET_ARN")
	if secretArn == "" {
		return result{}, fmt.Errorf("SECRET_ARN env var is required")
	}
	ns := os.Getenv("METRIC_NAMESPACE")
	if ns == "" {
		ns = "ExpoToWorld/Booking"
	}

	logger, err := logging.New(os.Getenv("APP_ENV"))
	if err != nil {
		return result{}, fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// AWS SDK clients
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return result{}, fmt.Errorf("aws config: %w", err)
	}
	sm := secretsmanager.NewFromConfig(awsCfg)
	cw := cloudwatch.NewFromConfig(awsCfg)

	dbURL, err := config.DatabaseURLFromSecret(ctx, sm, secretArn)
	if err != nil {
		return result{}, err
	}
	database, err := db.NewDatabaseWithRetry(dbURL, 3, time.Second, logger)
	if err != nil {
		return result{}, fmt.Errorf("connect db: %w", err)
	}
	defer database.Close()

	var publisher events.Publisher = events.Nop{}
	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		topic := os.Getenv("KAFKA_TOPIC")
		if topic == "" {
			topic = "booking.events"
		}
		publisher = events.NewKafkaPublisher(strings.Split(brokers, ","), topic, logger)
	}
	defer publisher.Close()

	engine := workflow.New(workflow.Deps{Store: database, Events: publisher, Logger: logger})

	marked, err := engine.SweepOverdue(ctx, time.Now())
	if err != nil {
		return result{Marked: marked}, fmt.Errorf("sweep overdue invoices: %w", err)
	}

	if err := services.PutCount(ctx, cw, ns, "InvoicesMarkedOverdue", int64(marked), "Job", "invoice-overdue"); err != nil {
		// metrics failure should not fail the job
		logger.Warn("put metrics failed", zap.Error(err))
	}
	logger.Info("overdue sweep finished", zap.Int("marked", marked))
	return result{Marked: marked}, nil
}

func main() {
	lambda.Start(handler)
}
