package main

import (
	"os"
	"strconv"
	"strings"

	"miniblog/internal/model"
	"miniblog/internal/pkg"
	"miniblog/internal/repository/mysql"
	"miniblog/internal/repository/redis"
	"miniblog/internal/router"

	"github.com/sirupsen/logrus"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	dsn := getenv("MINIBLOG_DSN",
		"user:password@tcp(127.0.0.1:3306)/miniblog?charset=utf8mb4&parseTime=True")
	if err := mysql.InitDB(dsn); err != nil {
		logrus.WithError(err).Fatal("mysql init failed")
	}

	if err := redis.Init(getenv("MINIBLOG_REDIS_ADDR", "127.0.0.1:6379"),
		os.Getenv("MINIBLOG_REDIS_PASSWORD"), 0); err != nil {
		logrus.WithError(err).Fatal("redis init failed")
	}
	defer redis.Close()

	if secret := os.Getenv("MINIBLOG_SESSION_SECRET"); secret != "" {
		pkg.SessionSecret = []byte(secret)
	}

	if err := mysql.DB.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Post{},
		&model.Comment{},
	); err != nil {
		logrus.WithError(err).Fatal("migrate failed")
	}

	smtpPort, _ := strconv.Atoi(getenv("MINIBLOG_SMTP_PORT", "587"))
	cfg := router.Config{
		SMTP: pkg.SMTPConfig{
			Host:     getenv("MINIBLOG_SMTP_HOST", "127.0.0.1"),
			Port:     smtpPort,
			Username: os.Getenv("MINIBLOG_SMTP_USER"),
			Password: os.Getenv("MINIBLOG_SMTP_PASSWORD"),
			From:     getenv("MINIBLOG_SMTP_FROM", "NoReply <no-reply@example.com>"),
		},
		MediaDir: getenv("MINIBLOG_MEDIA_DIR", "media"),
	}
	if brokers := os.Getenv("MINIBLOG_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka = pkg.KafkaConfig{
			Brokers: strings.Split(brokers, ","),
			Topic:   getenv("MINIBLOG_KAFKA_TOPIC", "miniblog.activity"),
		}
	}
	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		logrus.WithError(err).Fatal("media dir")
	}

	r := router.InitRouter(cfg)
	if err := r.Run(getenv("MINIBLOG_ADDR", ":8080")); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
