package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/pixpost/pixpost/pkg/pixpost"
	dynamorepo "github.com/pixpost/pixpost/pkg/pixpost/repo/dynamo"
	memoryrepo "github.com/pixpost/pixpost/pkg/pixpost/repo/memory"
	postgresrepo "github.com/pixpost/pixpost/pkg/pixpost/repo/postgres"
	memorystorage "github.com/pixpost/pixpost/pkg/pixpost/storage/memory"
	s3storage "github.com/pixpost/pixpost/pkg/pixpost/storage/s3"
)

// Config represents server configuration for the pixpost service.
//
// The metadata store is selected by what is set: DYNAMO_TABLE wins, then a
// postgres DATABASE_URL, then in-memory. Storage is S3 when BUCKET is set,
// in-memory otherwise (in-memory issues synthetic signed URLs, for
// development only).
type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DynamoTable string `env:"DYNAMO_TABLE" env-default:""`
	DatabaseURL string `env:"DATABASE_URL" env-default:""`

	S3 S3Config
}

// S3Config holds blob-store settings
type S3Config struct {
	Bucket          string `env:"BUCKET" env-default:""`
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	PresignDuration int    `env:"AWS_S3_PRESIGN_DURATION" env-default:"3600"`
}

// Load reads configuration from the environment, with an optional .env
// file applied first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DynamoTable != "" && c.DatabaseURL != "" {
		return errors.New("DYNAMO_TABLE and DATABASE_URL are mutually exclusive")
	}
	if c.DatabaseURL != "" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("unsupported DATABASE_URL format: %s", c.DatabaseURL)
	}
	return nil
}

// BuildService wires repository, object store and URL signer into a
// Service. The returned cleanup function releases any held connections.
func (c *Config) BuildService(ctx context.Context) (pixpost.Service, func(), error) {
	cleanup := func() {}

	repo, repoCleanup, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	if repoCleanup != nil {
		cleanup = repoCleanup
	}

	var objects pixpost.ObjectStore
	var signer pixpost.URLSigner
	if c.S3.Bucket != "" {
		backend, err := s3storage.New(s3storage.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
			PresignDuration: c.S3.PresignDuration,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("build s3 backend: %w", err)
		}
		objects, signer = backend, backend
	} else {
		backend := memorystorage.New()
		objects, signer = backend, backend
	}

	svc, err := pixpost.New(
		pixpost.WithRepository(repo),
		pixpost.WithObjectStore(objects),
		pixpost.WithURLSigner(signer),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return svc, cleanup, nil
}

func (c *Config) buildRepository(ctx context.Context) (pixpost.Repository, func(), error) {
	switch {
	case c.DynamoTable != "":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load AWS config: %w", err)
		}
		repo, err := dynamorepo.New(dynamodb.NewFromConfig(awsCfg), c.DynamoTable)
		if err != nil {
			return nil, nil, err
		}
		return repo, nil, nil

	case c.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		return postgresrepo.NewWithPool(pool), pool.Close, nil

	default:
		return memoryrepo.New(), nil, nil
	}
}
