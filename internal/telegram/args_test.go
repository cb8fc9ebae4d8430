package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykvlv/calendar-bot/internal/commands"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		command string
		input   string
		want    map[string]string
		wantErr bool
	}{
		{
			name:    "empty",
			command: commands.CmdHelp,
			input:   "",
			want:    map[string]string{},
		},
		{
			name:    "quoted value",
			command: commands.CmdCreate,
			input:   `name="Team sync" start_year=2024 NOTIFY_1=30m`,
			want:    map[string]string{"name": "Team sync", "start_year": "2024", "notify_1": "30m"},
		},
		{
			name:    "value with equals sign",
			command: commands.CmdCreate,
			input:   `description='a=b'`,
			want:    map[string]string{"description": "a=b"},
		},
		{
			name:    "positional range",
			command: commands.CmdList,
			input:   "past page=2",
			want:    map[string]string{"range": "past", "page": "2"},
		},
		{
			name:    "positional channel",
			command: commands.CmdInit,
			input:   "-100123",
			want:    map[string]string{"channel": "-100123"},
		},
		{name: "bare word without positional", command: commands.CmdCreate, input: "meeting", wantErr: true},
		{name: "two bare words", command: commands.CmdList, input: "past future", wantErr: true},
		{name: "empty key", command: commands.CmdCreate, input: "=x", wantErr: true},
		{name: "unterminated quote", command: commands.CmdCreate, input: `name="oops`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.command, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
