package config

import (
	"flag"
	"os"
	"time"

	"github.com/betterimg/betterimg/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-m string   store mode: "local" or "remote"
//	-d string   path of the local sqlite database
//	-r string   base URL of the hosted record service
//	-s string   HMAC secret for local session tokens
//	-t int      session token validity, minutes
//	-g string   image-generation service base URL
//	-k string   image-generation API key
//	-v int      avatar generation timeout, seconds
//	-p string   checkout API base URL
//	-u string   checkout API client id
//	-w string   checkout API secret
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so the -c/-config flags of the JSON stage pass through
// untouched. Duration flags are accepted as integers and converted.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-d", "-r", "-s", "-t", "-g", "-k", "-v", "-p", "-u", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StoreMode, "m", cfg.StoreMode, "store mode: local or remote")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database path")
	fs.StringVar(&cfg.RemoteEndpointAddr, "r", cfg.RemoteEndpointAddr, "record service base URL")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key for local session tokens")

	sessionTokenValidity := fs.Int("t", int(cfg.SessionTokenValidity.Minutes()), "session token validity (in minutes)")

	fs.StringVar(&cfg.ImageGenEndpointAddr, "g", cfg.ImageGenEndpointAddr, "image generation service base URL")
	fs.StringVar(&cfg.ImageGenAPIKey, "k", cfg.ImageGenAPIKey, "image generation API key")

	avatarTimeout := fs.Int("v", int(cfg.AvatarTimeout.Seconds()), "avatar generation timeout (in seconds)")

	fs.StringVar(&cfg.PaymentEndpointAddr, "p", cfg.PaymentEndpointAddr, "checkout API base URL")
	fs.StringVar(&cfg.PaymentClientID, "u", cfg.PaymentClientID, "checkout API client id")
	fs.StringVar(&cfg.PaymentSecret, "w", cfg.PaymentSecret, "checkout API secret")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionTokenValidity = time.Duration(*sessionTokenValidity) * time.Minute
	cfg.AvatarTimeout = time.Duration(*avatarTimeout) * time.Second
}
