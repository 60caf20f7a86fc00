package docs_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gpr/cmd/cli"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetFileNameConstant    = "config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

func readReadmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func TestReadmeConfigurationMatchesEmbeddedDefaults(testInstance *testing.T) {
	snippetContent := readReadmeConfigurationSnippet(testInstance)

	decoder := yaml.NewDecoder(strings.NewReader(snippetContent))
	decoder.KnownFields(true)
	var documented cli.ApplicationConfiguration
	require.NoError(testInstance, decoder.Decode(&documented))

	embeddedContent, _ := cli.EmbeddedDefaultConfiguration()
	var embedded cli.ApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal(embeddedContent, &embedded))

	require.Equal(testInstance, embedded, documented)
	require.Equal(testInstance, 30*time.Second, documented.Tracker.Timeout)
}

func TestReadmeConfigurationLoads(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), readmeSnippetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(readReadmeConfigurationSnippet(testInstance)), 0o600))

	application := cli.NewApplication()
	standardOutput := &bytes.Buffer{}
	application.SetOutput(standardOutput, &bytes.Buffer{})
	application.SetArguments([]string{"config", "--config", configurationPath, "--log-level=error"})

	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, standardOutput.String(), "# source: "+configurationPath)
	require.Equal(testInstance, "LINEAR_API_KEY", application.Configuration().Tracker.TokenVariable)
}
