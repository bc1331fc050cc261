package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagFile           string
	flagHTTP           string
	flagLogLevel       int
	flagProcessBackend bool
	flagRetries        int
	flagNoMemcheck     bool
	flagWorkers        int
	flagHelp           bool
	flagVersion        bool
)

func init() {
	flag.StringVarP(&flagFile, "file", "f", "-", "Script to run, - for stdin")
	flag.StringVarP(&flagHTTP, "http", "", "", "Serve /metrics, /live and /ready on this address")
	flag.IntVarP(&flagLogLevel, "log-level", "l", 3, "0 trace, 1 debug, 2 info, 3 warn, 4 error, 5 quiet")
	flag.BoolVarP(&flagProcessBackend, "process-backend", "p", false, "Keep segments inside this process")
	flag.IntVarP(&flagRetries, "retries", "r", 2, "Attach retries on transient errors")
	flag.BoolVarP(&flagNoMemcheck, "no-memcheck", "", false, "Skip the host memory check before allocating")
	flag.IntVarP(&flagWorkers, "workers", "w", 4, "Objects handling messages concurrently")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Drive shared memory segments from a message script

Usage: shmemctl [OPTION]...

Script:
  -f, --file=FILE        Script to run, - for stdin (default: -)

Segments:
  -p, --process-backend  Keep segments inside this process
  -r, --retries=NUM      Attach retries on transient errors (default: 2)
      --no-memcheck      Skip the host memory check before allocating
  -w, --workers=NUM      Objects handling messages concurrently (default: 4)

Monitoring:
      --http=ADDR        Serve /metrics, /live and /ready, then wait for a signal
  -l, --log-level=NUM    0 trace .. 4 error, 5 quiet (default: 3)

Miscellaneous:
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits

Script lines:
  table NAME SIZE        define a table of SIZE zeros
  fill NAME V...         write values at the start of a table
  print NAME             print a table once pending messages are handled
  obj NAME [ID SIZE]     create an object, attached when ID and SIZE are given
  free NAME              release an object
  wait                   wait for pending messages
  NAME SELECTOR ARGS...  send allocate, memset, memdump, memclear or memread`

// Help information is printed and program exits
func help() {
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	y.Printf("shm")
	b.Println("emctl")
	fmt.Println(helpString)
}
