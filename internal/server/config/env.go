package config

import (
	"strings"

	"github.com/spf13/viper"
)

// newEnv is a seam so tests can feed a prepared viper instance.
var newEnv = func() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

// parseEnv overlays environment variables. Names follow the deployment's
// existing .env files (PORT, JWT_SECRET, EMAIL_USER, AZURE_*, ...).
func parseEnv(config *Config) {
	v := newEnv()

	if port := strings.TrimSpace(v.GetString("PORT")); port != "" {
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		config.EndpointAddrHTTP = port
	}

	setString(&config.DatabaseDSN, v.GetString("DATABASE_DSN"))
	setString(&config.LogLevel, v.GetString("LOG_LEVEL"))
	setString(&config.SecretKey, v.GetString("JWT_SECRET"))
	if v.GetString("SESSION_TOKEN_TTL") != "" {
		config.SessionTokenValidityDuration = v.GetDuration("SESSION_TOKEN_TTL")
	}
	if v.GetString("RESET_TOKEN_TTL") != "" {
		config.ResetTokenValidityDuration = v.GetDuration("RESET_TOKEN_TTL")
	}
	if cost := v.GetInt("BCRYPT_COST"); cost > 0 {
		config.BcryptCost = cost
	}

	setString(&config.PublicWebOrigin, v.GetString("PUBLIC_WEB_ORIGIN"))
	if origins := splitList(v.GetString("CORS_ORIGINS")); len(origins) > 0 {
		config.AllowedOrigins = origins
	}

	setString(&config.MailProvider, v.GetString("MAIL_PROVIDER"))
	setString(&config.MailFromName, v.GetString("MAIL_FROM_NAME"))
	setString(&config.SMTPHost, v.GetString("SMTP_HOST"))
	if port := v.GetInt("SMTP_PORT"); port > 0 {
		config.SMTPPort = port
	}
	setString(&config.SMTPUser, v.GetString("EMAIL_USER"))
	setString(&config.SMTPPassword, v.GetString("EMAIL_PASS"))
	setString(&config.AzureTenantID, v.GetString("AZURE_TENANT_ID"))
	setString(&config.AzureClientID, v.GetString("AZURE_CLIENT_ID"))
	setString(&config.AzureClientSecret, v.GetString("AZURE_CLIENT_SECRET"))
	setString(&config.AzureSenderEmail, v.GetString("AZURE_SENDER_EMAIL"))

	setString(&config.S3RootUser, v.GetString("S3_ROOT_USER"))
	setString(&config.S3RootPassword, v.GetString("S3_ROOT_PASSWORD"))
	setString(&config.S3Bucket, v.GetString("S3_BUCKET"))
	setString(&config.S3Region, v.GetString("S3_REGION"))
	setString(&config.S3BaseEndpoint, v.GetString("S3_BASE_ENDPOINT"))
	setString(&config.EbookObjectKey, v.GetString("EBOOK_OBJECT_KEY"))

	setString(&config.AdminEmail, v.GetString("ADMIN_EMAIL"))
	setString(&config.AdminPassword, v.GetString("ADMIN_PASSWORD"))
}
