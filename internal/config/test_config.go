package config

import "time"

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "localhost",
			Port:      8081,
			RateLimit: 1000,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "chwadmin_test",
			User:     "test_user",
			Password: "test_password",
			SSLMode:  "disable",
		},
		JWT: JWTConfig{
			Secret:     "test-secret",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		Cache: CacheConfig{
			ProfileTTL: time.Minute,
		},
		Publish: PublishConfig{
			Window:  time.Minute,
			MaxJobs: 2,
		},
		Worker: WorkerConfig{
			Concurrency:       1,
			RepublishSchedule: "0 3 * * *",
		},
	}
}
