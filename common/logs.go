package common

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const ServiceName = "defectboard"

func init() {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	logger.Formatter = &logrus.TextFormatter{}
	logger.AddHook(&DefaultFieldsHook{})
}

// ConfigureLogger applies level and format ("json" or "text") to the standard logger.
func ConfigureLogger(level, format string) {
	logger := logrus.StandardLogger()
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else if level != "" {
		logrus.Warnf("unknown log level '%s', keep %s", level, logger.GetLevel())
	}
	if strings.EqualFold(format, "json") {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{}
	}
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = ServiceName
	e.Data["instance"] = GetServiceInstance()
	return nil
}

var (
	serviceInstance     string
	serviceInstanceOnce sync.Once
)

func GetServiceInstance() string {
	serviceInstanceOnce.Do(func() {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "unknown"
		}
		serviceInstance = host
	})
	return serviceInstance
}
