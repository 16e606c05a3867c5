package commands

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeFlag_Set(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "rfc3339 keeps its own zone",
			input: "2025-01-10T09:30:00Z",
			want:  time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "date only is local midnight",
			input: "2025-01-10",
			want:  time.Date(2025, 1, 10, 0, 0, 0, 0, loc),
		},
		{
			name:  "date and minute",
			input: "2025-01-10T17:45",
			want:  time.Date(2025, 1, 10, 17, 45, 0, 0, loc),
		},
		{
			name:  "date and minute with space",
			input: "2025-01-10 17:45",
			want:  time.Date(2025, 1, 10, 17, 45, 0, 0, loc),
		},
		{
			name:    "garbage",
			input:   "yesterday",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &TimeFlag{Location: loc}
			err := f.Set(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, f.Value())
				return
			}
			require.NoError(t, err)
			require.NotNil(t, f.Value())
			assert.True(t, tt.want.Equal(*f.Value()), "got %v, want %v", *f.Value(), tt.want)
		})
	}
}

func TestTimeFlag_Unset(t *testing.T) {
	f := &TimeFlag{}
	assert.Nil(t, f.Value())
	assert.Empty(t, f.String())
	assert.Equal(t, "time", f.Type())
}

func TestTimeFlag_WithFlagSet(t *testing.T) {
	var since TimeFlag
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&since, "since", "start of the window")

	require.NoError(t, fs.Parse([]string{"--since", "2025-01-06T08:00:00Z"}))
	require.NotNil(t, since.Value())
	assert.Equal(t, "2025-01-06T08:00:00Z", since.String())
}
