// Package config provides configuration management for dataharvester.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each field in a `default` struct tag.
//
// # Configuration Structure
//
// The Config struct is divided into subsections, keyed by the legacy variable prefixes:
//   - Cobalto: rooms API URL, timeout and PHPSESSID cookie (COBALTO_*)
//   - Database: driver and connection details (PG_*)
//   - Storage: S3/MinIO payload archive (STORAGE_*)
//   - Log: logging level and format (LOG_*)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Host)
package config
