package buildinfo

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = time.Now().Format(time.RFC3339)
)

// UserAgent is sent with every request unless the config overrides it.
var UserAgent = fmt.Sprintf("comicarr/%s (%s %s)", Version, runtime.GOOS, runtime.GOARCH)
