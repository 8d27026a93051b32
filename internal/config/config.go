// Package config loads service configuration from an optional YAML file,
// a .env file and HEXGRID_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/talgya/hexgrid/internal/hexgrid"
	"github.com/talgya/hexgrid/internal/terrain"
)

// Config is the full service configuration.
type Config struct {
	Grid    GridSettings    `mapstructure:"grid"`
	Terrain TerrainSettings `mapstructure:"terrain"`
	DBPath  string          `mapstructure:"db_path"`
	API     APISettings     `mapstructure:"api"`
	Log     LogSettings     `mapstructure:"log"`
}

// GridSettings mirrors hexgrid.GridConfig in config-file form.
type GridSettings struct {
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	Radius      float64 `mapstructure:"radius"`
	Orientation string  `mapstructure:"orientation"`
	Layout      string  `mapstructure:"layout"`
}

// TerrainSettings mirrors terrain.GenConfig.
type TerrainSettings struct {
	Seed        int64   `mapstructure:"seed"`
	SeaLevel    float64 `mapstructure:"sea_level"`
	MountainLvl float64 `mapstructure:"mountain_level"`
	MaxRivers   int     `mapstructure:"max_rivers"`
}

// APISettings configures the HTTP API.
type APISettings struct {
	Port      int    `mapstructure:"port"`
	AdminKey  string `mapstructure:"admin_key"` // Bearer token for mutating endpoints. Empty = disabled.
	RateLimit int    `mapstructure:"rate_limit"` // Range requests per IP per minute
}

// LogSettings configures logging.
type LogSettings struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // Rotated log file; empty = stdout only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Default returns the built-in configuration.
func Default() Config {
	grid := hexgrid.DefaultGridConfig()
	gen := terrain.DefaultGenConfig()
	return Config{
		Grid: GridSettings{
			Width:       grid.GridWidth,
			Height:      grid.GridHeight,
			Radius:      grid.Radius,
			Orientation: grid.Orientation.String(),
			Layout:      grid.Layout.Name(),
		},
		Terrain: TerrainSettings{
			Seed:        gen.Seed,
			SeaLevel:    gen.SeaLevel,
			MountainLvl: gen.MountainLvl,
			MaxRivers:   gen.MaxRivers,
		},
		DBPath: "data/hexgrid.db",
		API: APISettings{
			Port:      8080,
			RateLimit: 120,
		},
		Log: LogSettings{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// Load reads configuration. configFile may be empty, in which case
// ./hexgrid.yaml is used if present.
func Load(configFile string) (Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("HEXGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("hexgrid")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("grid.width", d.Grid.Width)
	v.SetDefault("grid.height", d.Grid.Height)
	v.SetDefault("grid.radius", d.Grid.Radius)
	v.SetDefault("grid.orientation", d.Grid.Orientation)
	v.SetDefault("grid.layout", d.Grid.Layout)
	v.SetDefault("terrain.seed", d.Terrain.Seed)
	v.SetDefault("terrain.sea_level", d.Terrain.SeaLevel)
	v.SetDefault("terrain.mountain_level", d.Terrain.MountainLvl)
	v.SetDefault("terrain.max_rivers", d.Terrain.MaxRivers)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.admin_key", d.API.AdminKey)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
}

// GridConfig converts the grid settings into a hexgrid.GridConfig.
func (c Config) GridConfig() (hexgrid.GridConfig, error) {
	o, err := hexgrid.ParseOrientation(c.Grid.Orientation)
	if err != nil {
		return hexgrid.GridConfig{}, err
	}
	layout, err := hexgrid.LayoutByName(c.Grid.Layout)
	if err != nil {
		return hexgrid.GridConfig{}, err
	}
	return hexgrid.GridConfig{
		GridWidth:   c.Grid.Width,
		GridHeight:  c.Grid.Height,
		Radius:      c.Grid.Radius,
		Orientation: o,
		Layout:      layout,
	}, nil
}

// GenConfig converts the terrain settings into a terrain.GenConfig.
func (c Config) GenConfig() terrain.GenConfig {
	return terrain.GenConfig{
		Seed:        c.Terrain.Seed,
		SeaLevel:    c.Terrain.SeaLevel,
		MountainLvl: c.Terrain.MountainLvl,
		MaxRivers:   c.Terrain.MaxRivers,
	}
}
