// Command linkhealth crawls a website and reports on the health of every
// link it finds.
package main

import (
	cmd "github.com/linkaudit/linkhealth-scanner/internal/cli"
)

func main() {
	cmd.Execute()
}
