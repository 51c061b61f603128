package main

import (
	"os"

	"github.com/CompassSecurity/secretscrub/internal/cmd"
	"github.com/CompassSecurity/secretscrub/internal/cmd/common"
)

func main() {
	os.Exit(common.Run(cmd.NewRootCmd()))
}
