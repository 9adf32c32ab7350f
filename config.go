package fileintake

import (
	"strings"

	"github.com/gobeaver/beaver-kit/config"
	"github.com/gobeaver/fileintake/filevalidator"
)

type Config struct {
	// Validation limits
	MaxFileSize       int64  `env:"INTAKE_MAX_FILE_SIZE,default:10485760"` // 10MB default
	MinFileSize       int64  `env:"INTAKE_MIN_FILE_SIZE,default:0"`
	AllowedMimeTypes  string `env:"INTAKE_ALLOWED_MIME_TYPES"` // comma-separated
	AllowedExtensions string `env:"INTAKE_ALLOWED_EXTENSIONS"` // comma-separated
	MaxFiles          int    `env:"INTAKE_MAX_FILES,default:1"`
	ValidateFileName  bool   `env:"INTAKE_VALIDATE_FILE_NAME,default:true"`

	// Checksum algorithm for metadata (xxhash, sha256, md5, sha1, sha512, crc32, none)
	Checksum string `env:"INTAKE_CHECKSUM,default:xxhash"`

	// Preview plugin settings, read by the preview package
	PreviewEnabled bool `env:"INTAKE_PREVIEW_ENABLED,default:false"`
	PreviewSize    int  `env:"INTAKE_PREVIEW_SIZE,default:200"`
	PreviewQuality int  `env:"INTAKE_PREVIEW_QUALITY,default:80"` // percent
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Partial converts the environment settings into a validation configuration
func (c *Config) Partial() filevalidator.PartialConfig {
	p := filevalidator.PartialConfig{
		MaxSize:          filevalidator.Int64(c.MaxFileSize),
		MinSize:          filevalidator.Int64(c.MinFileSize),
		MaxFiles:         filevalidator.Int(c.MaxFiles),
		ValidateFileName: filevalidator.Bool(c.ValidateFileName),
	}
	if c.AllowedMimeTypes != "" {
		p.AllowedTypes = splitList(c.AllowedMimeTypes)
	}
	if c.AllowedExtensions != "" {
		p.AllowedExtensions = splitList(c.AllowedExtensions)
	}
	return p
}

func splitList(s string) []string {
	items := strings.Split(s, ",")
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
