package main

import (
	"os"

	airmonitor "github.com/TheCacophonyProject/air-monitor/internal/air-monitor"
	"github.com/TheCacophonyProject/go-utils/logging"
)

var version = "<not set>"

var log = logging.NewLogger("info")

func main() {
	if err := airmonitor.Run(os.Args[1:], version); err != nil {
		log.Fatal(err)
	}
}
