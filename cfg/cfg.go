package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Server struct {
		Port            int
		AllowedOrigins  []string
		ReadTimeoutSec  int
		WriteTimeoutSec int
		IdleTimeoutSec  int
	}

	Log struct {
		Level string
	}

	GithubApi struct {
		AccessToken       string
		BaseUrl           string
		RequestsPerSecond int
		ThrottleDelay     int
		RateLimitResetMin int
		TimeoutSec        int
	}

	// Storage selects the user-state backend: memory, sqlite or mysql.
	Storage struct {
		Driver     string
		SqlitePath string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	KafkaProducer struct {
		TopicEvents string
	}

	Kafka struct {
		Enabled  bool
		Brokers  []string
		GroupID  string
		Producer KafkaProducer
	}

	Catalog struct {
		SearchQuery string
		Pages       int
		PerPage     int
		MaxProjects int
		TTLMinutes  int
		RefreshCron string
	}

	Search struct {
		HistorySize int
		MaxResults  int
	}
)

type Config struct {
	App       App
	Server    Server
	Log       Log
	GithubApi GithubApi
	Storage   Storage
	Mysql     Mysql
	Kafka     Kafka
	Catalog   Catalog
	Search    Search
}

// ApplyDefaults fills zero values so a partial yaml file still yields a usable config.
func (c *Config) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "oss-finder"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = 15
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = 15
	}
	if c.Server.IdleTimeoutSec == 0 {
		c.Server.IdleTimeoutSec = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.GithubApi.BaseUrl == "" {
		c.GithubApi.BaseUrl = "https://api.github.com"
	}
	if c.GithubApi.RequestsPerSecond <= 0 {
		c.GithubApi.RequestsPerSecond = 5
	}
	if c.GithubApi.ThrottleDelay <= 0 {
		c.GithubApi.ThrottleDelay = 100
	}
	if c.GithubApi.RateLimitResetMin <= 0 {
		c.GithubApi.RateLimitResetMin = 1
	}
	if c.GithubApi.TimeoutSec <= 0 {
		c.GithubApi.TimeoutSec = 30
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.SqlitePath == "" {
		c.Storage.SqlitePath = "data/oss-finder.db"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "oss-finder-analytics"
	}
	if c.Kafka.Producer.TopicEvents == "" {
		c.Kafka.Producer.TopicEvents = "oss-finder.analytics"
	}
	if c.Catalog.SearchQuery == "" {
		c.Catalog.SearchQuery = "good-first-issues:>3 stars:>100 archived:false"
	}
	if c.Catalog.Pages <= 0 {
		c.Catalog.Pages = 3
	}
	if c.Catalog.PerPage <= 0 || c.Catalog.PerPage > 100 {
		c.Catalog.PerPage = 50
	}
	if c.Catalog.MaxProjects <= 0 {
		c.Catalog.MaxProjects = 300
	}
	if c.Catalog.TTLMinutes <= 0 {
		c.Catalog.TTLMinutes = 60
	}
	if c.Catalog.RefreshCron == "" {
		c.Catalog.RefreshCron = "@every 1h"
	}
	if c.Search.HistorySize <= 0 {
		c.Search.HistorySize = 20
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 50
	}
}
