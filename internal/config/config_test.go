package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			assert.Equal(t, 8080, cfg.Server.Port)
			assert.Equal(t, "postgres", cfg.Database.Driver)
			assert.Equal(t, "jobs_db", cfg.Database.Database)
			assert.Equal(t, "mail_exchange", cfg.RabbitMQ.Exchange.Name)
			assert.Equal(t, "mail_dlx", cfg.RabbitMQ.DeadLetterExchange)
			assert.Equal(t, TransportQueue, cfg.Mailer.Transport)
			assert.Equal(t, 3*time.Second, cfg.Workflow.EmailTimeout)
			assert.Equal(t, "jobboard-api-service", cfg.App.Name)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("testdata/invalid_port.yaml")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Workflow.EmailTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SMTP_PASSWORD", "")

	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "", cfg.Mailer.SMTP.Password, "empty env values do not override")
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			Database: "jobs_db",
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			Exchange: ExchangeConfig{Name: "mail_exchange"},
			Queue:    QueueConfig{Name: "mail_queue"},
		},
		Mailer: MailerConfig{
			Transport: TransportQueue,
			From:      "jobs@example.com",
			SMTP:      SMTPConfig{Host: "smtp.example.com", Port: 587},
		},
		Auth: AuthConfig{JWTSecret: "secret123"},
		Worker: WorkerConfig{
			Concurrency: 2,
			SendTimeout: time.Second,
			MaxAttempts: 3,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "invalid server port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			errString: "invalid server port",
		},
		{
			name:      "invalid server port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			errString: "invalid server port",
		},
		{
			name:      "empty database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			errString: "database host is required",
		},
		{
			name:      "empty database name",
			mutate:    func(c *Config) { c.Database.Database = "" },
			errString: "database name is required",
		},
		{
			name:      "unknown database driver",
			mutate:    func(c *Config) { c.Database.Driver = "mysql" },
			errString: "unsupported database driver",
		},
		{
			name: "sqlite needs only a path",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
			},
		},
		{
			name:      "sqlite without path",
			mutate:    func(c *Config) { c.Database = DatabaseConfig{Driver: "sqlite"} },
			errString: "database path is required",
		},
		{
			name:      "queue transport needs rabbitmq host",
			mutate:    func(c *Config) { c.RabbitMQ.Host = "" },
			errString: "rabbitmq host is required",
		},
		{
			name:      "queue transport needs exchange",
			mutate:    func(c *Config) { c.RabbitMQ.Exchange.Name = "" },
			errString: "rabbitmq exchange name is required",
		},
		{
			name:      "queue transport needs queue",
			mutate:    func(c *Config) { c.RabbitMQ.Queue.Name = "" },
			errString: "rabbitmq queue name is required",
		},
		{
			name: "log transport ignores rabbitmq",
			mutate: func(c *Config) {
				c.Mailer.Transport = TransportLog
				c.RabbitMQ = RabbitMQConfig{}
			},
		},
		{
			name: "smtp transport needs smtp host",
			mutate: func(c *Config) {
				c.Mailer.Transport = TransportSMTP
				c.Mailer.SMTP.Host = ""
			},
			errString: "smtp host is required",
		},
		{
			name:      "unknown transport",
			mutate:    func(c *Config) { c.Mailer.Transport = "carrier-pigeon" },
			errString: "unsupported mailer transport",
		},
		{
			name:      "missing jwt secret",
			mutate:    func(c *Config) { c.Auth.JWTSecret = "" },
			errString: "auth jwt_secret is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.errString != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateWorker(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{
			name:   "valid worker config",
			mutate: func(c *Config) {},
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Worker.Concurrency = 0 },
			errString: "worker concurrency must be greater than 0",
		},
		{
			name:      "zero send timeout",
			mutate:    func(c *Config) { c.Worker.SendTimeout = 0 },
			errString: "worker send_timeout must be greater than 0",
		},
		{
			name:      "zero attempts",
			mutate:    func(c *Config) { c.Worker.MaxAttempts = 0 },
			errString: "worker max_attempts must be greater than 0",
		},
		{
			name:      "invalid from address",
			mutate:    func(c *Config) { c.Mailer.From = "not-an-address" },
			errString: "invalid mailer from address",
		},
		{
			name:      "invalid smtp port",
			mutate:    func(c *Config) { c.Mailer.SMTP.Port = 0 },
			errString: "invalid smtp port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateWorker()

			if tt.errString != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	t.Run("load and validate valid config", func(t *testing.T) {
		cfg, err := Load("testdata/valid_config.yaml")
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
	})

	t.Run("load config with invalid port", func(t *testing.T) {
		cfg, err := Load("testdata/invalid_port.yaml")
		require.NoError(t, err)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server port")
	})

	t.Run("load config with missing database", func(t *testing.T) {
		cfg, err := Load("testdata/missing_database.yaml")
		require.NoError(t, err)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database name is required")
	})

	t.Run("load and validate worker config", func(t *testing.T) {
		cfg, err := Load("testdata/worker_config.yaml")
		require.NoError(t, err)
		require.NoError(t, cfg.ValidateWorker())
		assert.Equal(t, 10, cfg.RabbitMQ.Consumer.PrefetchCount)
	})
}
