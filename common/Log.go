package common

import (
	"os"

	"github.com/sirupsen/logrus"
)

// serviceFieldsHook stamps every entry with the service identity so that
// aggregated logs can tell instances apart.
type serviceFieldsHook struct {
}

func (h *serviceFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = GetServiceName()
	e.Data["serviceInstance"] = GetServiceInstance()
	return nil
}

func init() {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.AddHook(&serviceFieldsHook{})
}
