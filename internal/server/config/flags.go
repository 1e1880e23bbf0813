package config

import (
	"flag"
	"os"

	"github.com/sergeyk-dev/authgate/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-g string   AWS region
//	-u string   Cognito user pool id
//	-i string   Cognito app client id
//	-s string   Cognito app client secret
//	-o string   allowed CORS origin
//
// Args are filtered through flagx.FilterArgs first, so flags owned by other
// components in the process do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-g", "-u", "-i", "-s", "-o"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.UserPoolID, "u", config.UserPoolID, "Cognito user pool id")
	fs.StringVar(&config.ClientID, "i", config.ClientID, "Cognito app client id")
	fs.StringVar(&config.ClientSecret, "s", config.ClientSecret, "Cognito app client secret")
	fs.StringVar(&config.CORSOrigin, "o", config.CORSOrigin, "allowed CORS origin")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
