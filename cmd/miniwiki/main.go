// Command miniwiki はMarkdownで書くマルチユーザーWikiサーバー。
//
// 使い方:
//
//	miniwiki [serve|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/miniwiki/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "miniwiki: %v\n", err)
		os.Exit(1)
	}
}
