package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

// Load returns an in-memory configuration that never touches GitHub credentials or brokers.
func (ml *MockLoader) Load() (*Config, error) {
	config := &Config{
		App: App{
			Name:    "oss-finder",
			Version: "0.0.1",
		},

		Server: Server{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},

		Log: Log{Level: "debug"},

		GithubApi: GithubApi{
			AccessToken:       "",
			BaseUrl:           "https://api.github.com",
			RequestsPerSecond: 10,
			ThrottleDelay:     10,
			RateLimitResetMin: 1,
			TimeoutSec:        5,
		},

		Storage: Storage{Driver: "memory"},

		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "oss_finder",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		Kafka: Kafka{Enabled: false},

		Catalog: Catalog{
			Pages:       1,
			PerPage:     30,
			MaxProjects: 100,
			TTLMinutes:  10,
		},
	}
	config.ApplyDefaults()
	return config, nil
}
