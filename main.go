package main

import (
	"log"
	"net/http"

	"groundwork/attendance"
	"groundwork/audit"
	"groundwork/bizerror"
	"groundwork/domain"
	"groundwork/fieldsync"
	"groundwork/infra/tracing"
	"groundwork/material"
	"groundwork/persistence"
	"groundwork/servehttp"
	"groundwork/session"
	"groundwork/wage"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(
		&domain.Project{}, &domain.ProjectMember{}, &domain.Labour{},
		&material.MaterialRequest{},
		&attendance.AttendanceRecord{}, &attendance.AttendanceSession{},
		&wage.WageRate{}, &wage.LabourRequest{}, &wage.LabourRequestParticipant{},
		&fieldsync.ActionRecord{}, &audit.AuditLogRecord{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	tracerCloser, err := tracing.SetupTracer()
	if err != nil {
		log.Printf("tracer setup failed %v\n", err)
	} else {
		defer tracerCloser.Close()
	}

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "groundwork")
	})

	fieldsync.RegisterFieldActionsRestAPI(engine, servehttp.RateLimit(rate.Limit(50), 200), session.SimpleAuthFilter())
	audit.RegisterAuditLogsRestAPI(engine, session.SimpleAuthFilter())
	wage.RegisterWageRestAPI(engine, session.SimpleAuthFilter())
	attendance.RegisterAttendancesRestAPI(engine, session.SimpleAuthFilter())
	material.RegisterMaterialRequestsRestAPI(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
