package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Config struct {
	Seed   int  `mapstructure:"seed"`
	Strict bool `mapstructure:"strict"`

	// output sink selection
	OutputFormat      string             `mapstructure:"output_format"` // csv, json, parquet, postgres, console
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"` // local or s3
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`
	Database          DatabaseConfig     `mapstructure:"database"`

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`

	// sample generator
	SampleCount   int       `mapstructure:"sample_count"`
	SampleStart   time.Time `mapstructure:"sample_start"`
	SampleEnd     time.Time `mapstructure:"sample_end"`
	CentreLat     float64   `mapstructure:"centre_latitude"`
	CentreLon     float64   `mapstructure:"centre_longitude"`
	UrbanRadiusKm float64   `mapstructure:"urban_radius_km"`

	// dataset operations
	TrainRatio  float64 `mapstructure:"train_ratio"`
	Stratify    bool    `mapstructure:"stratify"`
	CellSizeKm  float64 `mapstructure:"cell_size_km"`
	TopHotspots int     `mapstructure:"top_hotspots"`

	// modelling
	Epochs       int     `mapstructure:"epochs"`
	LearningRate float64 `mapstructure:"learning_rate"`
	L2Lambda     float64 `mapstructure:"l2_lambda"`

	// forecasting
	Horizon      int `mapstructure:"horizon"`
	SeasonLength int `mapstructure:"season_length"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".stats19")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// a config file is optional; flags and defaults cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
