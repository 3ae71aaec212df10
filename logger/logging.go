package logger

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"orderbot/config"
)

func SetupLogging(conf config.Config, logger *log.Logger) {
	if conf.Logging.LogPath != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   conf.Logging.LogPath,
			MaxSize:    32, // megabytes
			MaxBackups: 2,
			MaxAge:     28,   //days
			Compress:   true, // disabled by default
		})
	} else {
		logger.SetOutput(os.Stdout)
	}
	switch conf.Logging.LogLevel {
	case "trace":
		logger.SetLevel(log.TraceLevel)
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	case "fatal":
		logger.SetLevel(log.FatalLevel)
	case "panic":
		logger.SetLevel(log.PanicLevel)
	default:
		panic("unknown logging level. Check the config!")
	}
	logger.SetFormatter(&log.TextFormatter{
		PadLevelText:    true,
		DisableColors:   true,
		TimestampFormat: time.DateTime,
	})
}
