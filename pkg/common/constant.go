package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyFleetCSVPath string = "FLEET_CSV_PATH"

	EnvKeyFleetLogDir string = "FLEET_LOG_DIR"

	EnvKeyFleetHttpHostPort string = "FLEET_HTTP_HOST_PORT"

	EnvKeyFleetCacheWindowSeconds string = "FLEET_CACHE_WINDOW_SECONDS"

	EnvKeyFleetDefaultRate  string = "FLEET_DEFAULT_RATE"
	EnvKeyFleetDefaultBurst string = "FLEET_DEFAULT_BURST"

	LoggerNameFleetCore     string = "fleet_core"
	LoggerNameSimulator     string = "simulator"
	LoggerNameCacheLoader   string = "cache_loader"
	LoggerNameCSVStore      string = "csv_store"
	LoggerNameRestfulServer string = "restful_server"
	LoggerFieldCategory     string = "category"
	LoggerCategoryQuery     string = "query"
	LoggerCategoryBackfill  string = "backfill"
	LoggerCategoryAppend    string = "append"
)
