// Package conf holds the bootstrap configuration scanned from configs/config.yaml.
package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of the configuration tree.
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Auth   *Auth   `json:"auth"`
	Log    *Log    `json:"log"`
}

type Server struct {
	HTTP *Transport `json:"http"`
	GRPC *Transport `json:"grpc"`
}

type Transport struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
	Storage  *Storage  `json:"storage"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Redis struct {
	Addr         string    `json:"addr"`
	Password     string    `json:"password"`
	DB           int       `json:"db"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
}

// Storage configures the S3 compatible bucket that hosts posters and profile pictures.
// An empty Endpoint disables uploads.
type Storage struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"use_ssl"`
	PublicURL string `json:"public_url"`
}

// Auth carries the token signing secret and the single shared admin credential.
type Auth struct {
	JwtSecret     string    `json:"jwt_secret"`
	TokenTTL      *Duration `json:"token_ttl"`
	AdminEmail    string    `json:"admin_email"`
	AdminPassword string    `json:"admin_password"`
}

type Log struct {
	Level string `json:"level"`
}

// Duration decodes Go duration strings ("0.2s") as well as plain seconds.
type Duration struct {
	time.Duration
}

// AsDuration returns the wrapped value; a nil receiver yields zero.
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
