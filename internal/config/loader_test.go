package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/assay/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 50.0)
				convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ASSAY_ADDR", ":8080")
			_ = os.Setenv("ASSAY_STORE_DRIVER", "sqlite")
			_ = os.Setenv("ASSAY_STORE_DSN", "/tmp/assay.db")
			_ = os.Setenv("ASSAY_RATE_LIMIT_RPS", "2.5")
			_ = os.Setenv("ASSAY_LOOKUP_CONCURRENCY", "3")
			_ = os.Setenv("ASSAY_SINGLE_TOP_SCORE", "5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.StoreDSN, convey.ShouldEqual, "/tmp/assay.db")
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.LookupConcurrency, convey.ShouldEqual, 3)
				convey.So(cfg.SingleTopScore, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# dashboard settings
addr: ":9090"  # inline comment
log_format: json
seed_file: ./seed.yaml
suggest_distance: 3
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ASSAY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.SeedFile, convey.ShouldEqual, "./seed.yaml")
				convey.So(cfg.SuggestDistance, convey.ShouldEqual, 3)
				convey.So(cfg.SingleTopScore, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When an explicit file is given alongside ASSAY_CONFIG", func() {
			envFile := createTempConfigFile("addr: \":7000\"\n")
			flagFile := createTempConfigFile("addr: \":7001\"\nstore_driver: sqlite\nstore_dsn: assay.db\n")
			defer func() {
				_ = os.Remove(envFile)
				_ = os.Remove(flagFile)
			}()

			_ = os.Setenv("ASSAY_CONFIG", envFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, config.WithFile(flagFile))

			convey.Convey("Then the explicit file wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7001")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
			})

			convey.Convey("Then an empty explicit path falls back to ASSAY_CONFIG", func() {
				cfg, err := config.Load(ctx, config.WithFile(""))
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
rate_limit_burst: 10
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ASSAY_CONFIG", tmpFile)
			_ = os.Setenv("ASSAY_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ASSAY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ASSAY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ASSAY_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Addr")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown store driver", func() {
			_ = os.Setenv("ASSAY_STORE_DRIVER", "mongo")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ASSAY_LOOKUP_CONCURRENCY", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ASSAY_CONFIG",
		"ASSAY_ADDR",
		"ASSAY_STORE_DRIVER",
		"ASSAY_STORE_DSN",
		"ASSAY_RATE_LIMIT_RPS",
		"ASSAY_LOOKUP_CONCURRENCY",
		"ASSAY_SINGLE_TOP_SCORE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "assay-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
