package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Downloader holds download worker configuration
type Downloader struct {
	WorkDir       string
	KeepTemp      bool
	ResourceDelay time.Duration
	CourseDelay   time.Duration
}

// Flags returns CLI flags for download worker configuration
func (c *Downloader) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "Directory for session folders and archives",
			Value:       ".",
			Destination: &c.WorkDir,
			Sources:     cli.EnvVars("SCORMPACK_WORK_DIR"),
		},
		&cli.BoolFlag{
			Name:        "keep-temp",
			Usage:       "Keep session temp folders after packaging (debug)",
			Value:       false,
			Destination: &c.KeepTemp,
			Sources:     cli.EnvVars("SCORMPACK_KEEP_TEMP"),
		},
		&cli.DurationFlag{
			Name:        "resource-delay",
			Usage:       "Delay between resource fetches within a course",
			Value:       500 * time.Millisecond,
			Destination: &c.ResourceDelay,
			Sources:     cli.EnvVars("SCORMPACK_RESOURCE_DELAY"),
		},
		&cli.DurationFlag{
			Name:        "course-delay",
			Usage:       "Delay between courses",
			Value:       2 * time.Second,
			Destination: &c.CourseDelay,
			Sources:     cli.EnvVars("SCORMPACK_COURSE_DELAY"),
		},
	}
}
