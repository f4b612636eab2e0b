package app

import "strings"

// Command はminiwikiバイナリのサブコマンド。
type Command string

const (
	CommandServe       Command = "serve"       // Wikiサーバーを起動する（デフォルト）
	CommandMigrate     Command = "migrate"     // スキーマを最新にして終了する
	CommandHealthcheck Command = "healthcheck" // distrolessイメージのHEALTHCHECK用
	CommandHelp        Command = "help"
)

var commandSummaries = []struct {
	cmd     Command
	summary string
}{
	{CommandServe, "start the wiki server (default)"},
	{CommandMigrate, "apply database migrations and exit"},
	{CommandHealthcheck, "probe GET /health on SERVER_PORT"},
	{CommandHelp, "show this message"},
}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 引数なしや未知の値はCommandServeとして扱い、-h/--helpはCommandHelpになる。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "-h", "--help", string(CommandHelp):
		return CommandHelp
	}
	for _, c := range commandSummaries {
		if args[0] == string(c.cmd) {
			return c.cmd
		}
	}
	return CommandServe
}

// Usage はサブコマンドの一覧を返す。
func Usage() string {
	var b strings.Builder
	b.WriteString("usage: miniwiki [command]\n\ncommands:\n")
	for _, c := range commandSummaries {
		b.WriteString("  ")
		b.WriteString(string(c.cmd))
		b.WriteString(strings.Repeat(" ", 13-len(c.cmd)))
		b.WriteString(c.summary)
		b.WriteString("\n")
	}
	return b.String()
}
