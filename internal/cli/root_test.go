package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.2.3")
	require.NotNil(t, cmd)
	assert.Equal(t, "kitchenstock", cmd.Use)
	assert.Equal(t, "1.2.3", cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand("test")
	for _, name := range []string{"serve", "migrate", "import", "export"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand("test")

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestTransferCommandsRequireTenant(t *testing.T) {
	cmd := NewRootCommand("test")
	for _, name := range []string{"import", "export"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		flag := sub.Flags().Lookup("tenant")
		require.NotNil(t, flag, name)
		assert.Equal(t, "t", flag.Shorthand)
		assert.Equal(t, []string{"true"}, flag.Annotations["cobra_annotation_bash_completion_one_required_flag"])
	}
}

func TestMigrateArgs(t *testing.T) {
	cmd := NewRootCommand("test")
	migrate, _, err := cmd.Find([]string{"migrate"})
	require.NoError(t, err)

	assert.NoError(t, migrate.Args(migrate, nil))
	assert.NoError(t, migrate.Args(migrate, []string{"status"}))
	assert.Error(t, migrate.Args(migrate, []string{"sideways"}))
	assert.Error(t, migrate.Args(migrate, []string{"up", "down"}))
}

func TestImportRejectsMissingFile(t *testing.T) {
	cmd := NewRootCommand("test")
	cmd.SetArgs([]string{"import", "--tenant", "cozinha-1", "/nonexistent/estoque.xlsx"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))

	wrapped := WrapExitError(ExitCommandError, "load config", errors.New("KS_DATABASE_URL missing"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "load config: KS_DATABASE_URL missing", wrapped.Error())
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2024, 5, 2, 23, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	assert.Equal(t, "estoque-cozinha-1-20240503.xlsx", exportFileName("cozinha-1", at))
}
