package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/perfgo/resulttool/model"
	"github.com/perfgo/resulttool/resultutils"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, GroupingFields, cfg.Grouping)
	require.Equal(t, DefaultLimit, *cfg.Limit)
	require.Equal(t, resultutils.RegressionFields, cfg.RegressionFields)
	require.Equal(t, resultutils.StoreFields, cfg.StoreFields)
	require.False(t, cfg.GuessMetadata)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "empty document",
			in:   "",
			want: func(t *testing.T, cfg *Config) {
				require.Equal(t, Default(), cfg)
			},
		},
		{
			name: "comments only",
			in:   "# nothing here\n",
			want: func(t *testing.T, cfg *Config) {
				require.Equal(t, GroupingFields, cfg.Grouping)
			},
		},
		{
			name: "overrides",
			in: `grouping: digest
limit: 0
guess_metadata: true
regression_fields:
  runtime: [TEST_TYPE, MACHINE]
`,
			want: func(t *testing.T, cfg *Config) {
				require.Equal(t, GroupingDigest, cfg.Grouping)
				require.Equal(t, 0, *cfg.Limit)
				require.True(t, cfg.GuessMetadata)
				require.Equal(t, map[string][]string{"runtime": {"TEST_TYPE", "MACHINE"}}, cfg.RegressionFields)
				require.Equal(t, resultutils.StoreFields, cfg.StoreFields)
			},
		},
		{
			name:    "unknown grouping",
			in:      "grouping: random\n",
			wantErr: "invalid grouping",
		},
		{
			name:    "negative limit",
			in:      "limit: -1\n",
			wantErr: "invalid limit",
		},
		{
			name:    "empty field list",
			in:      "store_fields:\n  runtime: []\n",
			wantErr: "store_fields.runtime",
		},
		{
			name:    "unknown key",
			in:      "groupin: fields\n",
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.in))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "resulttool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grouping: default\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, GroupingDefault, cfg.Grouping)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config file")
}

func TestKeyStrategies(t *testing.T) {
	cfg := model.Configuration{
		TestType:      "runtime",
		TestSeries:    "series1",
		ImageBasename: "image",
		ImagePkgType:  "ipk",
		Distro:        "mydistro",
		Machine:       "qemux86",
	}

	tests := []struct {
		grouping string
		want     string
	}{
		{GroupingFields, "series1/runtime/image/qemux86/ipk/mydistro"},
		{GroupingDefault, "runtime/mydistro/qemux86/image"},
	}
	for _, tt := range tests {
		t.Run(tt.grouping, func(t *testing.T) {
			c := Default()
			c.Grouping = tt.grouping
			require.Equal(t, tt.want, c.RegressionKey()(cfg))
		})
	}

	c := Default()
	c.Grouping = GroupingDigest
	digest, err := cfg.Digest()
	require.NoError(t, err)
	require.Equal(t, digest, c.RegressionKey()(cfg))

	require.Equal(t, "runtime/mydistro/qemux86/image", Default().StoreKey()(cfg))
}
