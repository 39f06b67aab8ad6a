package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/label-matcher/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "")
	t.Setenv("ORACLE_PROVIDER", "")
	cfg := LoadConfig()

	assert.Equal(t, constants.SourceJSON, cfg.Catalog.Source)
	assert.Equal(t, "ollama", cfg.Oracle.Provider)
	assert.Equal(t, constants.OracleTimeout, cfg.Oracle.Timeout)
	assert.Equal(t, constants.OracleConnectTimeout, cfg.Oracle.ConnectTimeout)
	assert.Equal(t, constants.MaxShortlist, cfg.Match.MaxShortlist)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "postgresql")
	t.Setenv("DB_URL", "postgres://localhost/flowers")
	t.Setenv("ORACLE_TIMEOUT", "750ms")
	t.Setenv("MATCH_MAX_SHORTLIST", "12")
	t.Setenv("CATALOG_WATCH", "false")
	cfg := LoadConfig()

	assert.Equal(t, constants.SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, 12, cfg.Match.MaxShortlist)
	assert.False(t, cfg.Catalog.Watch)
	assert.Equal(t, "750ms", cfg.Oracle.Timeout.String())
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"sql without dsn":     func(c *Config) { c.Catalog.Source = constants.SourceMySQL; c.Database.DSN = "" },
		"openai without key":  func(c *Config) { c.Oracle.Provider = "openai"; c.Oracle.APIKey = "" },
		"unknown oracle":      func(c *Config) { c.Oracle.Provider = "bard" },
		"file without path":   func(c *Config) { c.Catalog.Path = " " },
		"unknown source":      func(c *Config) { c.Catalog.Source = "" },
		"zero shortlist size": func(c *Config) { c.Match.MaxShortlist = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("CATALOG_SOURCE", "json")
			cfg := LoadConfig()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestToStatus(t *testing.T) {
	wrapped := NewAppError("EMPTY_TEXT", "ocr text is empty", ErrInvalidInput)
	st, ok := status.FromError(ToStatus(wrapped))
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())

	st, _ = status.FromError(ToStatus(WrapError(ErrCatalogUnavailable, "reload")))
	assert.Equal(t, codes.Unavailable, st.Code())

	st, _ = status.FromError(ToStatus(errors.New("boom")))
	assert.Equal(t, codes.Internal, st.Code())

	assert.NoError(t, ToStatus(nil))
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("ocr_text", "  ", Required).
		Field("ocr_text_normalizado", "ABCDEF", MaxLength(3)).
		Field("id", 0, Positive)

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.ErrorIs(t, v.Error(), ErrValidation)

	ok := NewValidator().Field("ocr_text", "ROSA", Required, MaxLength(10)).Field("id", 7, Positive)
	assert.NoError(t, ok.Error())
}

func TestEnsureRequestID(t *testing.T) {
	ctx, rid := EnsureRequestID(context.Background())
	require.NotEmpty(t, rid)
	assert.Equal(t, rid, RequestIDFromContext(ctx))

	same, again := EnsureRequestID(WithRequestID(context.Background(), "fixed"))
	assert.Equal(t, "fixed", again)
	assert.Equal(t, "fixed", RequestIDFromContext(same))
}
