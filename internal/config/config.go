package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
	"github.com/joho/godotenv"
)

const Environment = "GO_ENV"
const LocalPortNumber = "GRPC_PORT_ENV"
const RabbitMQUrlKey = "RABBITMQ_URL"
const RabbitMQUsernameKey = "RABBITMQ_USERNAME"
const RabbitMQUrlPasswordKey = "RABBITMQ_PASSWORD"
const RedisUrlKey = "REDIS_URL"
const TonRPCEndpointKey = "TON_RPC_ENDPOINT"
const TonRPCTimeoutKey = "TON_RPC_TIMEOUT"
const WorkerPoolSizeKey = "WORKER_POOL_SIZE"
const SubmissionTTLKey = "SUBMISSION_TTL"

const (
	defaultWorkerPoolSize = 10
	defaultSubmissionTTL  = 24 * time.Hour
)

type Config struct {
	PortNumber     string
	Env            string
	RabitMQUrl     string
	RedisUrl       string
	Endpoint       toncenter.EndpointConfig
	WorkerPoolSize int
	SubmissionTTL  time.Duration
}

// NewConfig loads .env from the working directory when one exists and
// then reads the service configuration from the environment.
func NewConfig() (*Config, error) {

	if _, err := os.Stat(".env"); err == nil {
		// Load environment variables from the .env file
		if err := godotenv.Load(); err != nil {
			slog.Error("Error loading .env file", "error", err)
			return nil, err
		}
	}

	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	required := []string{
		LocalPortNumber, Environment, RabbitMQUsernameKey, RabbitMQUrlPasswordKey,
		RabbitMQUrlKey, RedisUrlKey, TonRPCEndpointKey,
	}
	var missing []string
	for _, key := range required {
		if get(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("error loading data from environment: missing %s", strings.Join(missing, ", "))
	}

	endpoint := toncenter.EndpointConfig{Endpoint: get(TonRPCEndpointKey)}
	if v := get(TonRPCTimeoutKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", TonRPCTimeoutKey, v, err)
		}
		endpoint.Timeout = d
	}
	if err := endpoint.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TonRPCEndpointKey, err)
	}

	workers := defaultWorkerPoolSize
	if v := get(WorkerPoolSizeKey); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s %q", WorkerPoolSizeKey, v)
		}
		workers = n
	}

	ttl := defaultSubmissionTTL
	if v := get(SubmissionTTLKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid %s %q", SubmissionTTLKey, v)
		}
		ttl = d
	}

	rabitMQUrl := "amqp://" + get(RabbitMQUsernameKey) + ":" + get(RabbitMQUrlPasswordKey) + "@" + get(RabbitMQUrlKey)

	return &Config{
		PortNumber:     get(LocalPortNumber),
		Env:            get(Environment),
		RabitMQUrl:     rabitMQUrl,
		RedisUrl:       get(RedisUrlKey),
		Endpoint:       endpoint,
		WorkerPoolSize: workers,
		SubmissionTTL:  ttl,
	}, nil
}

func (s *Config) GetEnvironment() string {
	return s.Env
}

func (s *Config) GetApplicationName() string {
	return "boc-submitter"
}
