package config

import "github.com/urfave/cli/v3"

// Platform holds content platform configuration
type Platform struct {
	BaseURL     string
	StorageFrom string
	StorageTo   string
}

// Flags returns CLI flags for content platform configuration
func (c *Platform) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "platform-url",
			Usage:       "Content platform base URL",
			Value:       "https://portal.igotkarmayogi.gov.in",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("SCORMPACK_PLATFORM_URL"),
		},
		&cli.StringFlag{
			Name:        "storage-rewrite-from",
			Usage:       "Artifact URL prefix to rewrite",
			Value:       "https://storage.googleapis.com/igotprod",
			Destination: &c.StorageFrom,
			Sources:     cli.EnvVars("SCORMPACK_STORAGE_REWRITE_FROM"),
		},
		&cli.StringFlag{
			Name:        "storage-rewrite-to",
			Usage:       "Replacement prefix for rewritten artifact URLs",
			Value:       "https://igotkarmayogi.gov.in/content-store",
			Destination: &c.StorageTo,
			Sources:     cli.EnvVars("SCORMPACK_STORAGE_REWRITE_TO"),
		},
	}
}
