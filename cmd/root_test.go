package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/location-intel/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"analyze", "concept", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "location-intel", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"lat", "lng", "radius"} {
		flag := analyzeCmd.Flags().Lookup(flagName)
		require.NotNil(t, flag, "analyze should have --%s flag", flagName)
	}
}

func TestConceptCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"lat", "lng", "radius", "out"} {
		flag := conceptCmd.Flags().Lookup(flagName)
		require.NotNil(t, flag, "concept should have --%s flag", flagName)
	}
	assert.NotNil(t, conceptCmd.Args)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestInitEnv_DisabledCacheAndNoCredentials(t *testing.T) {
	cfg = &config.Config{}
	cfg.Cache.Driver = "disabled"
	cfg.Analysis.DefaultRadiusMeters = 500
	cfg.Server.Port = 8080

	env, err := initEnv(t.Context(), "concept")
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Analyzer)
	assert.NotNil(t, env.Engine)
	assert.NotNil(t, env.Cache)
}

func TestInitEnv_InvalidConfig(t *testing.T) {
	cfg = &config.Config{}
	cfg.Cache.Driver = "redis" // url missing

	_, err := initEnv(t.Context(), "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}
