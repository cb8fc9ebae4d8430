package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"

	"github.com/ykvlv/calendar-bot/internal/commands"
)

var errBareArgument = errors.New("argument must be key=value")

// positional names the option a bare argument fills, per command.
var positional = map[string]string{
	commands.CmdList: commands.OptRange,
	commands.CmdInit: commands.OptChannel,
}

// parseArgs splits `name="Team sync" start_year=2024` into options.
// Values may be quoted. One bare argument is accepted where positional allows it.
func parseArgs(command, s string) (map[string]string, error) {
	tokens, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("split arguments: %w", err)
	}

	opts := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			name, has := positional[command]
			if !has || opts[name] != "" {
				return nil, fmt.Errorf("%w: %q", errBareArgument, tok)
			}
			opts[name] = tok
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, fmt.Errorf("%w: %q", errBareArgument, tok)
		}
		opts[key] = value
	}
	return opts, nil
}
