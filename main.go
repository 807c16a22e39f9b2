package main

import (
	"github.com/enfoca-app/assist-api/cmd"
)

func main() {
	cmd.Execute()
}
