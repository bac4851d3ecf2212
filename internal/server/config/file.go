package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/konasal/konasal-backend/internal/flagx"
	"github.com/konasal/konasal-backend/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for JSON/YAML decoding. Durations go through
// timex.Duration so both "15m" and integer nanoseconds are accepted. Only
// non-zero values override what is already in Config.
type FileConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN      string `json:"database_dsn" yaml:"database_dsn"`
	LogLevel         string `json:"log_level" yaml:"log_level"`

	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration" yaml:"session_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration" yaml:"reset_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`

	PublicWebOrigin string   `json:"public_web_origin" yaml:"public_web_origin"`
	AllowedOrigins  []string `json:"allowed_origins" yaml:"allowed_origins"`

	MailProvider      string `json:"mail_provider" yaml:"mail_provider"`
	MailFromName      string `json:"mail_from_name" yaml:"mail_from_name"`
	SMTPHost          string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort          int    `json:"smtp_port" yaml:"smtp_port"`
	SMTPUser          string `json:"smtp_user" yaml:"smtp_user"`
	SMTPPassword      string `json:"smtp_password" yaml:"smtp_password"`
	AzureTenantID     string `json:"azure_tenant_id" yaml:"azure_tenant_id"`
	AzureClientID     string `json:"azure_client_id" yaml:"azure_client_id"`
	AzureClientSecret string `json:"azure_client_secret" yaml:"azure_client_secret"`
	AzureSenderEmail  string `json:"azure_sender_email" yaml:"azure_sender_email"`

	S3RootUser     string `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	EbookObjectKey string `json:"ebook_object_key" yaml:"ebook_object_key"`
}

// parseFile overlays the file given by -c/-config. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON. An unreadable or
// malformed file panics: the server must not start on half a configuration.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, fc)
	default:
		err = json.Unmarshal(b, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.SecretKey, fc.SecretKey)
	if fc.SessionTokenValidityDuration.Duration > 0 {
		c.SessionTokenValidityDuration = fc.SessionTokenValidityDuration.Duration
	}
	if fc.ResetTokenValidityDuration.Duration > 0 {
		c.ResetTokenValidityDuration = fc.ResetTokenValidityDuration.Duration
	}
	if fc.BcryptCost > 0 {
		c.BcryptCost = fc.BcryptCost
	}
	setString(&c.PublicWebOrigin, fc.PublicWebOrigin)
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	setString(&c.MailProvider, fc.MailProvider)
	setString(&c.MailFromName, fc.MailFromName)
	setString(&c.SMTPHost, fc.SMTPHost)
	if fc.SMTPPort > 0 {
		c.SMTPPort = fc.SMTPPort
	}
	setString(&c.SMTPUser, fc.SMTPUser)
	setString(&c.SMTPPassword, fc.SMTPPassword)
	setString(&c.AzureTenantID, fc.AzureTenantID)
	setString(&c.AzureClientID, fc.AzureClientID)
	setString(&c.AzureClientSecret, fc.AzureClientSecret)
	setString(&c.AzureSenderEmail, fc.AzureSenderEmail)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.EbookObjectKey, fc.EbookObjectKey)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
