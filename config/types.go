package config

// APIConfig points the client at the remote transport API.
type APIConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"required,url"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
	PageSize  int    `yaml:"pageSize" validate:"gte=0"`
}

// CacheConfig controls the two local cache tiers.
//
// The small tier is a single JSON file holding compact entity lists; the
// bulk tier holds large geometry payloads, either as gob files under
// BulkDir or in Redis when RedisAddr is set. Both tiers are pure caches:
// deleting them only costs a refetch.
type CacheConfig struct {
	SmallPath  string `yaml:"smallPath"`
	BulkDir    string `yaml:"bulkDir"`
	RedisAddr  string `yaml:"redisAddr" validate:"omitempty,hostname_port"`
	TTLMinutes int    `yaml:"ttlMinutes" validate:"gte=0"`
}

// RealtimeConfig contains the optional GTFS-RT vehicle positions feed.
type RealtimeConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
}

// Config is the root configuration structure.
type Config struct {
	API      APIConfig      `yaml:"api" validate:"required"`
	Cache    CacheConfig    `yaml:"cache"`
	Realtime RealtimeConfig `yaml:"realtime"`
}
