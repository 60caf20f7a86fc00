package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gpr/internal/utils"
)

const (
	testLoggerInfoMessageConstant    = "pushing feature/dit-42-login"
	testLoggerDebugMessageConstant   = "git rev-parse --abbrev-ref HEAD"
	testLoggerInvalidValueConstant   = "verbose"
	testStructuredLevelKeyConstant   = "level"
	testStructuredMessageKeyConstant = "msg"
	testStructuredTimeKeyConstant    = "ts"
	testConsoleLevelLabelConstant    = "INFO"
)

// captureLoggerOutput builds a logger while standard error is redirected and returns everything it wrote.
func captureLoggerOutput(testInstance *testing.T, level utils.LogLevel, format utils.LogFormat, emit func(*zap.Logger)) []byte {
	testInstance.Helper()

	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	logger, creationError := utils.NewLoggerFactory().CreateLogger(level, format)
	os.Stderr = originalStandardError
	require.NoError(testInstance, creationError)

	emit(logger)
	if syncError := logger.Sync(); syncError != nil {
		require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
	}

	require.NoError(testInstance, pipeWriter.Close())
	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return bytes.TrimSpace(capturedOutput)
}

func TestLoggerFactoryStructuredFormatWritesJSONToStandardError(testInstance *testing.T) {
	capturedOutput := captureLoggerOutput(testInstance, utils.LogLevelInfo, utils.LogFormatStructured, func(logger *zap.Logger) {
		logger.Info(testLoggerInfoMessageConstant)
	})

	decodedEntry := map[string]any{}
	require.NoError(testInstance, json.Unmarshal(capturedOutput, &decodedEntry))
	require.Equal(testInstance, "info", decodedEntry[testStructuredLevelKeyConstant])
	require.Equal(testInstance, testLoggerInfoMessageConstant, decodedEntry[testStructuredMessageKeyConstant])
	require.Contains(testInstance, decodedEntry, testStructuredTimeKeyConstant)
}

func TestLoggerFactoryConsoleFormatOmitsTimestampAndCaller(testInstance *testing.T) {
	capturedOutput := captureLoggerOutput(testInstance, utils.LogLevelInfo, utils.LogFormatConsole, func(logger *zap.Logger) {
		logger.Info(testLoggerInfoMessageConstant)
	})

	require.False(testInstance, json.Valid(capturedOutput))
	require.Contains(testInstance, string(capturedOutput), testConsoleLevelLabelConstant)
	require.Contains(testInstance, string(capturedOutput), testLoggerInfoMessageConstant)
	require.NotContains(testInstance, string(capturedOutput), "logger_factory_test.go")
	require.NotRegexp(testInstance, `\d{4}-\d{2}-\d{2}`, string(capturedOutput))
}

func TestLoggerFactoryHonorsLevel(testInstance *testing.T) {
	testCases := []struct {
		name          string
		level         utils.LogLevel
		expectDebug   bool
		expectInfo    bool
		expectedLines int
	}{
		{name: "debug_emits_everything", level: utils.LogLevelDebug, expectDebug: true, expectInfo: true, expectedLines: 2},
		{name: "info_hides_debug", level: utils.LogLevelInfo, expectInfo: true, expectedLines: 1},
		{name: "warn_hides_info", level: utils.LogLevelWarn, expectedLines: 0},
		{name: "error_hides_info", level: utils.LogLevelError, expectedLines: 0},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			capturedOutput := captureLoggerOutput(testInstance, testCase.level, utils.LogFormatStructured, func(logger *zap.Logger) {
				logger.Debug(testLoggerDebugMessageConstant)
				logger.Info(testLoggerInfoMessageConstant)
			})

			require.Equal(testInstance, testCase.expectDebug, bytes.Contains(capturedOutput, []byte(testLoggerDebugMessageConstant)))
			require.Equal(testInstance, testCase.expectInfo, bytes.Contains(capturedOutput, []byte(testLoggerInfoMessageConstant)))
			if testCase.expectedLines == 0 {
				require.Empty(testInstance, capturedOutput)
				return
			}
			require.Len(testInstance, bytes.Split(capturedOutput, []byte("\n")), testCase.expectedLines)
		})
	}
}

func TestLoggerFactoryRejectsUnsupportedSettings(testInstance *testing.T) {
	testCases := []struct {
		name   string
		level  utils.LogLevel
		format utils.LogFormat
	}{
		{name: "unsupported_level", level: utils.LogLevel(testLoggerInvalidValueConstant), format: utils.LogFormatStructured},
		{name: "unsupported_format", level: utils.LogLevelInfo, format: utils.LogFormat(testLoggerInvalidValueConstant)},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.level, testCase.format)
			require.Error(testInstance, creationError)
			require.Contains(testInstance, creationError.Error(), testLoggerInvalidValueConstant)
			require.Nil(testInstance, logger)
		})
	}
}
