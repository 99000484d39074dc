package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "opswatch", cmd.Use)
	assert.Contains(t, cmd.Long, "progression rules")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "scan", "sweep", "rules"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestRulesSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"list", "import", "stats"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{"rules", name})
			require.NoError(t, err)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestScanCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	scanCmd, _, err := cmd.Find([]string{"scan"})
	require.NoError(t, err)

	shipmentFlag := scanCmd.Flags().Lookup("shipment")
	require.NotNil(t, shipmentFlag)

	contractFlag := scanCmd.Flags().Lookup("contract")
	require.NotNil(t, contractFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "rules", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestScanFlagsMutuallyExclusive(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"scan", "--shipment", "SHP-1", "--contract", "C-1"})

	err := cmd.Execute()
	assert.Error(t, err)
}
