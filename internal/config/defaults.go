package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite3"
	}
	if cfg.Storage.DatabasePath == "" && cfg.Storage.Driver == "sqlite3" {
		cfg.Storage.DatabasePath = "/usr/local/var/chizu/data/records.db"
	}
	if cfg.Search.BuildingMatch == "" {
		cfg.Search.BuildingMatch = BuildingMatchFields
	}
	if cfg.Search.Confidence == "" {
		cfg.Search.Confidence = ConfidenceFixed
	}
	if cfg.Search.ResultLimit == 0 {
		cfg.Search.ResultLimit = 50
	}
	if cfg.Place.City == "" {
		cfg.Place.City = "Ithaca"
	}
	if cfg.Place.State == "" {
		cfg.Place.State = "NY"
	}
}
