package config

import (
	"flag"
	"strings"
	"time"

	"github.com/konasal/konasal-backend/internal/flagx"
)

// parseFlags overlays the flags this package owns.
//
//	-a string   HTTP bind address (":5000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret
//	-t int      session token validity, minutes
//	-r int      reset token validity, minutes
//	-o string   public web origin used in reset links
//	-m string   mail provider: smtp, graph or log
//	-l string   log level
//
// Other arguments are filtered out first so the -c/-config flag and flags of
// other components do not collide.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-r", "-o", "-m", "-l", "-cors"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionMinutes := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	resetMinutes := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset token validity (in minutes)")
	fs.StringVar(&config.PublicWebOrigin, "o", config.PublicWebOrigin, "public web origin for reset links")
	fs.StringVar(&config.MailProvider, "m", config.MailProvider, "mail provider (smtp, graph, log)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	cors := fs.String("cors", strings.Join(config.AllowedOrigins, ","), "comma separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations and the origin list are only touched when given explicitly,
	// otherwise a "90s" from the environment would be truncated to minutes.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTokenValidityDuration = time.Duration(*sessionMinutes) * time.Minute
		case "r":
			config.ResetTokenValidityDuration = time.Duration(*resetMinutes) * time.Minute
		case "cors":
			config.AllowedOrigins = splitList(*cors)
		}
	})
}
