package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Sheet struct {
		Path string `yaml:"path"`
		Name string `yaml:"name"`
	} `yaml:"sheet"`
	Carrier struct {
		BaseURL        string `yaml:"baseURL"`
		TokenURL       string `yaml:"tokenURL"`
		APIKey         string `yaml:"apiKey"`
		APISecret      string `yaml:"apiSecret"`
		TimeoutSec     int    `yaml:"timeoutSec"`
		TokenCachePath string `yaml:"tokenCachePath"`
		Retry          struct {
			MaxAttempts  int `yaml:"maxAttempts"`
			BackoffMs    int `yaml:"backoffMs"`
			MaxBackoffMs int `yaml:"maxBackoffMs"`
		} `yaml:"retry"`
	} `yaml:"carrier"`
	Pipeline struct {
		RateLimitPerSec float64 `yaml:"rateLimitPerSec"`
	} `yaml:"pipeline"`
	Database struct {
		DSN string `yaml:"DSN"` // empty disables the already-scheduled check
	} `yaml:"database"`
	Audit struct {
		ExcelPath string `yaml:"excelPath"`
		Kafka     struct {
			Brokers         []string `yaml:"brokers"`
			Topic           string   `yaml:"topic"`
			WriteTimeOutSec int      `yaml:"writeTimeOutSec"`
		} `yaml:"kafka"`
		DumpFile    string `yaml:"dumpFile"`
		MaxDumpSize int    `yaml:"maxDumpSize"` // in megabytes
		MaxBufSize  int    `yaml:"maxBufSize"`
	} `yaml:"audit"`
	Logging struct {
		LogPath  string `yaml:"logPath"`
		LogLevel string `yaml:"logLevel"` // possible options are: trace, debug, info, warn, error, fatal, panic
	} `yaml:"logging"`
}

func ValidateConfig(conf Config) {
	if conf.Sheet.Path == "" {
		log.Fatal("Sheet path is required!")
	}
	if conf.Carrier.BaseURL == "" || conf.Carrier.TokenURL == "" {
		log.Fatal("Carrier baseURL and tokenURL are required!")
	}
	if conf.Carrier.APIKey == "" || conf.Carrier.APISecret == "" {
		log.Fatal("Carrier apiKey and apiSecret are required!")
	}
	if conf.Pipeline.RateLimitPerSec <= 0 {
		log.Fatal("Wrong value for rate limit: must be >0 requests per second!")
	}
	if conf.Carrier.Retry.MaxAttempts < 1 {
		log.Fatal("Wrong value for retry attempts: must be >=1!")
	}
	if len(conf.Audit.Kafka.Brokers) > 0 && conf.Audit.Kafka.Topic == "" {
		log.Fatal("Kafka audit topic is required when brokers are set!")
	}
}

func ParseConfig(path string) Config {
	var conf Config
	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	err = yaml.Unmarshal(file, &conf)
	if err != nil {
		log.Fatal("cant unmarshall config " + err.Error())
	}
	applyDefaults(&conf)
	ValidateConfig(conf)
	return conf
}

func applyDefaults(conf *Config) {
	if conf.Sheet.Name == "" {
		conf.Sheet.Name = "FINAL_ORDERS"
	}
	if conf.Carrier.TimeoutSec == 0 {
		conf.Carrier.TimeoutSec = 30
	}
	if conf.Carrier.Retry.MaxAttempts == 0 {
		conf.Carrier.Retry.MaxAttempts = 1
	}
	if conf.Carrier.Retry.BackoffMs == 0 {
		conf.Carrier.Retry.BackoffMs = 500
	}
	if conf.Carrier.Retry.MaxBackoffMs == 0 {
		conf.Carrier.Retry.MaxBackoffMs = 8000
	}
	if conf.Pipeline.RateLimitPerSec == 0 {
		conf.Pipeline.RateLimitPerSec = 2.0
	}
	if conf.Audit.Kafka.WriteTimeOutSec == 0 {
		conf.Audit.Kafka.WriteTimeOutSec = 10
	}
	if conf.Audit.MaxDumpSize == 0 {
		conf.Audit.MaxDumpSize = 32
	}
	if conf.Audit.MaxBufSize == 0 {
		conf.Audit.MaxBufSize = 1024
	}
	if conf.Logging.LogLevel == "" {
		conf.Logging.LogLevel = "info"
	}
}
