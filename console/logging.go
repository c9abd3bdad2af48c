package console

import (
	"log"
	"os"
)

// logger centralizes the ambient-concern "print a line and move on"
// logging the teacher used plain log/fmt calls for; every non-fatal
// condition in this package goes through it instead of ad hoc
// fmt.Printf calls scattered across the bus and debugger.
var logger = log.New(os.Stderr, "nes: ", log.LstdFlags)
