package main

import (
	"os"

	"github.com/qifsync-dev/qifsync/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
