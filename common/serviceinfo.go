package common

import (
	"os"
	"sync"

	"github.com/google/uuid"
)

const ServiceName = "groundwork"

var (
	serviceInstance     string
	serviceInstanceOnce sync.Once
)

func GetServiceName() string {
	return ServiceName
}

func GetServiceInstance() string {
	serviceInstanceOnce.Do(func() {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = uuid.New().String()
		}
		serviceInstance = hostname
	})
	return serviceInstance
}
