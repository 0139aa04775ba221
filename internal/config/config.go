package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Payroll  PayrollPolicy
	Outbox   OutboxConfig
}

type HTTPConfig struct {
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RateLimitPerUser  float64
	RateLimitBurst    int
	IdempotencyTTL    time.Duration
	RunMigrations     bool
	ConnectMaxRetries int
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Broker        string
	ConsumerGroup string
}

type JWTConfig struct {
	Secret string
}

// PayrollPolicy holds the tunables of draft review and payslip generation.
type PayrollPolicy struct {
	PenaltyThreshold           float64
	SalarySpikeThreshold       float64
	BlockingSeverity           string
	AdjustmentRequiresApproval bool
	PayslipNumberTemplate      string
	Currency                   string
	WorkingDaysDefault         int
	// DraftStaleAfter is how long a run may sit in GENERATING_DRAFT before a new draft request takes it over.
	DraftStaleAfter            time.Duration
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.rate_limit_per_user", 10.0)
	v.SetDefault("http.rate_limit_burst", 20)
	v.SetDefault("http.idempotency_ttl", 24*time.Hour)
	v.SetDefault("db.run_migrations", true)
	v.SetDefault("connect.max_retries", 5)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("kafka.consumer_group", "go-payroll-payslip")

	v.SetDefault("payroll.penalty_threshold", 0.5)
	v.SetDefault("payroll.salary_spike_threshold", 0.5)
	v.SetDefault("payroll.blocking_severity", "LOW")
	v.SetDefault("payroll.adjustment_requires_approval", true)
	v.SetDefault("payroll.payslip_number_template", "PS-{YYYY}{MM}-{SEQ6}")
	v.SetDefault("payroll.currency", "IDR")
	v.SetDefault("payroll.working_days_default", 22)
	v.SetDefault("payroll.draft_stale_after", 10*time.Minute)

	v.SetDefault("outbox.poll_interval", 3*time.Second)
	v.SetDefault("outbox.batch_size", 50)
}

// Load reads .env (when present) and the process environment. Keys map to
// upper snake case variables, e.g. payroll.penalty_threshold => PAYROLL_PENALTY_THRESHOLD.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		HTTP: HTTPConfig{
			Port:              v.GetString("port"),
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			RateLimitPerUser:  v.GetFloat64("http.rate_limit_per_user"),
			RateLimitBurst:    v.GetInt("http.rate_limit_burst"),
			IdempotencyTTL:    v.GetDuration("http.idempotency_ttl"),
			RunMigrations:     v.GetBool("db.run_migrations"),
			ConnectMaxRetries: v.GetInt("connect.max_retries"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			Port:     v.GetString("db.port"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Redis: RedisConfig{Addr: v.GetString("redis.addr")},
		Kafka: KafkaConfig{
			Broker:        v.GetString("kafka.broker"),
			ConsumerGroup: v.GetString("kafka.consumer_group"),
		},
		JWT: JWTConfig{Secret: v.GetString("jwt.secret")},
		Payroll: PayrollPolicy{
			PenaltyThreshold:           v.GetFloat64("payroll.penalty_threshold"),
			SalarySpikeThreshold:       v.GetFloat64("payroll.salary_spike_threshold"),
			BlockingSeverity:           strings.ToUpper(v.GetString("payroll.blocking_severity")),
			AdjustmentRequiresApproval: v.GetBool("payroll.adjustment_requires_approval"),
			PayslipNumberTemplate:      v.GetString("payroll.payslip_number_template"),
			Currency:                   v.GetString("payroll.currency"),
			WorkingDaysDefault:         v.GetInt("payroll.working_days_default"),
			DraftStaleAfter:            v.GetDuration("payroll.draft_stale_after"),
		},
		Outbox: OutboxConfig{
			PollInterval: v.GetDuration("outbox.poll_interval"),
			BatchSize:    v.GetInt("outbox.batch_size"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func DefaultPayrollPolicy() PayrollPolicy {
	return PayrollPolicy{
		PenaltyThreshold:           0.5,
		SalarySpikeThreshold:       0.5,
		BlockingSeverity:           "LOW",
		AdjustmentRequiresApproval: true,
		PayslipNumberTemplate:      "PS-{YYYY}{MM}-{SEQ6}",
		Currency:                   "IDR",
		WorkingDaysDefault:         22,
		DraftStaleAfter:            10 * time.Minute,
	}
}

func (c Config) Validate() error {
	if c.HTTP.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.Outbox.BatchSize <= 0 {
		return errors.New("OUTBOX_BATCH_SIZE must be positive")
	}
	return c.Payroll.Validate()
}

func (p PayrollPolicy) Validate() error {
	if p.PenaltyThreshold <= 0 || p.PenaltyThreshold > 1 {
		return fmt.Errorf("PAYROLL_PENALTY_THRESHOLD must be in (0, 1], got %v", p.PenaltyThreshold)
	}
	if p.SalarySpikeThreshold <= 0 {
		return fmt.Errorf("PAYROLL_SALARY_SPIKE_THRESHOLD must be positive, got %v", p.SalarySpikeThreshold)
	}
	switch p.BlockingSeverity {
	case "LOW", "MEDIUM", "HIGH", "CRITICAL":
	default:
		return fmt.Errorf("PAYROLL_BLOCKING_SEVERITY must be one of LOW, MEDIUM, HIGH, CRITICAL, got %q", p.BlockingSeverity)
	}
	if p.PayslipNumberTemplate == "" {
		return errors.New("PAYROLL_PAYSLIP_NUMBER_TEMPLATE cannot be empty")
	}
	if len(p.Currency) != 3 {
		return fmt.Errorf("PAYROLL_CURRENCY must be an ISO 4217 code, got %q", p.Currency)
	}
	if p.WorkingDaysDefault <= 0 {
		return errors.New("PAYROLL_WORKING_DAYS_DEFAULT must be positive")
	}
	if p.DraftStaleAfter <= 0 {
		return errors.New("PAYROLL_DRAFT_STALE_AFTER must be positive")
	}
	return nil
}
