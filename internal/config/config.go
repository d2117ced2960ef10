package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageVariantLocal      = "local"
	StorageVariantCloudinary = "cloudinary"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DATABASE_DSN" env-required:"true"`
	TokenSecret string            `yaml:"token_secret" env:"TOKEN_SECRET" env-required:"true"`
	TokenTTL    time.Duration     `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	HTTPServer  HTTPConfig        `yaml:"http"`
	Storage     FileStorageConfig `yaml:"file_storage"`
	Redis       RedisConf         `yaml:"redis"`
	Admin       AdminConf         `yaml:"admin"`
}

type HTTPConfig struct {
	Host        string  `yaml:"host" env:"HTTP_HOST"`
	Port        string  `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	CORSOrigin  string  `yaml:"cors_origin" env:"CORS_ORIGIN" env-default:"*"`
	BodyLimit   string  `yaml:"body_limit" env-default:"30M"`
	LoginRPS    float64 `yaml:"login_rps" env-default:"1"`
	LoginBurst  int     `yaml:"login_burst" env-default:"5"`
	UploadRPS   float64 `yaml:"upload_rps" env-default:"2"`
	UploadBurst int     `yaml:"upload_burst" env-default:"5"`
}

type FileStorageConfig struct {
	Variant       string `yaml:"variant" env:"STORAGE_VARIANT" env-default:"local"`
	BaseDir       string `yaml:"base_dir" env:"STORAGE_BASE_DIR" env-default:"./uploads"`
	BaseURL       string `yaml:"base_url" env:"STORAGE_BASE_URL" env-default:"http://localhost:8080"`
	CloudinaryURL string `yaml:"cloudinary_url" env:"CLOUDINARY_URL"`
	Folder        string `yaml:"folder" env:"CLOUDINARY_FOLDER" env-default:"asha_gallery"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

// AdminConf is only read by the seed command.
type AdminConf struct {
	Username string `yaml:"username" env:"ADMIN_USERNAME"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if cfg.Storage.Variant != StorageVariantLocal && cfg.Storage.Variant != StorageVariantCloudinary {
		panic("unknown file storage variant: " + cfg.Storage.Variant)
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
