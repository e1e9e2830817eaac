package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Catalog struct {
	BaseURL      string
	APIKey       string
	Languages    []string
	MinVoteCount int

	// Minimum delay between catalog requests and the retry budget for
	// rate-limited calls.
	MinRequestGap  time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RequestTimeout time.Duration
	MaxPages       int

	// Movie-taxonomy genre id -> series-taxonomy genre id. The two
	// catalogs number conceptually equal genres differently, so the
	// table travels as configuration rather than living in the client.
	GenreRemap map[int64]int64
}

type Curation struct {
	SetSize       int
	FetchFactor   int
	Retention     time.Duration
	LowCardWindow int
}

type Changefeed struct {
	Stream   string
	Group    string
	Consumer string
	Channel  string
}

type Config struct {
	HTTP       HTTPServer
	Redis      RedisCache
	Postgres   Postgres
	Catalog    Catalog
	Curation   Curation
	Changefeed Changefeed
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		_ = godotenv.Load()
	}

	return &Config{
		HTTP:       *newHTTP(),
		Redis:      *newRedis(),
		Postgres:   *newPostgres(),
		Catalog:    *newCatalog(),
		Curation:   *newCuration(),
		Changefeed: *newChangefeed(),
	}
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", "redis"),
		Password: getenv("REDIS_PASSWORD", ""),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenv("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "filmquorum"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

// Default remap covers the genres whose ids diverge between the movie
// and series taxonomies of the catalog.
const defaultGenreRemap = "28:10759,12:10759,878:10765,14:10765,10752:10768"

func newCatalog() *Catalog {
	return &Catalog{
		BaseURL:        getenv("CATALOG_BASE_URL", "https://api.themoviedb.org/3"),
		APIKey:         getenv("CATALOG_API_KEY", ""),
		Languages:      strings.Split(getenv("CATALOG_LANGUAGES", "en|es"), "|"),
		MinVoteCount:   getenvInt("CATALOG_MIN_VOTE_COUNT", 100),
		MinRequestGap:  getenvDuration("CATALOG_MIN_REQUEST_GAP", 250*time.Millisecond),
		MaxRetries:     getenvInt("CATALOG_MAX_RETRIES", 3),
		InitialBackoff: getenvDuration("CATALOG_INITIAL_BACKOFF", 500*time.Millisecond),
		MaxBackoff:     getenvDuration("CATALOG_MAX_BACKOFF", 8*time.Second),
		RequestTimeout: getenvDuration("CATALOG_REQUEST_TIMEOUT", 10*time.Second),
		MaxPages:       getenvInt("CATALOG_MAX_PAGES", 10),
		GenreRemap:     parseGenreRemap(getenv("CATALOG_GENRE_REMAP", defaultGenreRemap)),
	}
}

func newCuration() *Curation {
	return &Curation{
		SetSize:       getenvInt("CURATION_SET_SIZE", 50),
		FetchFactor:   getenvInt("CURATION_FETCH_FACTOR", 3),
		Retention:     getenvDuration("CURATION_RETENTION", 24*time.Hour),
		LowCardWindow: getenvInt("CURATION_LOW_CARD_WINDOW", 5),
	}
}

func newChangefeed() *Changefeed {
	host, _ := os.Hostname()
	if host == "" {
		host = "watcher"
	}
	return &Changefeed{
		Stream:   getenv("CHANGEFEED_STREAM", "votes:changes"),
		Group:    getenv("CHANGEFEED_GROUP", "consensus-watchers"),
		Consumer: getenv("CHANGEFEED_CONSUMER", host),
		Channel:  getenv("CONSENSUS_CHANNEL", "consensus:events"),
	}
}

// parseGenreRemap reads "old:new" pairs joined by commas. Malformed
// pairs are skipped with a log line instead of failing startup.
func parseGenreRemap(raw string) map[int64]int64 {
	remap := make(map[int64]int64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		old, updated, ok := strings.Cut(pair, ":")
		if !ok {
			log.Printf("%s skipping malformed genre remap pair %q", logtag, pair)
			continue
		}
		from, err1 := strconv.ParseInt(strings.TrimSpace(old), 10, 64)
		to, err2 := strconv.ParseInt(strings.TrimSpace(updated), 10, 64)
		if err1 != nil || err2 != nil {
			log.Printf("%s skipping malformed genre remap pair %q", logtag, pair)
			continue
		}
		remap[from] = to
	}
	return remap
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	return val
}

func getenvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("%s %s=%q is not a number. Using default %d", logtag, key, val, defaultValue)
		return defaultValue
	}
	return n
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("%s %s=%q is not a duration. Using default %s", logtag, key, val, defaultValue)
		return defaultValue
	}
	return d
}
